package determinism_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/njohnstone/prreview/internal/determinism"
)

func TestGenerateSeed(t *testing.T) {
	t.Run("deterministic for same inputs", func(t *testing.T) {
		seed1 := determinism.GenerateSeed("acme", "widgets", 7, "abc123")
		seed2 := determinism.GenerateSeed("acme", "widgets", 7, "abc123")

		assert.Equal(t, seed1, seed2)
	})

	t.Run("changes with the head commit", func(t *testing.T) {
		seed1 := determinism.GenerateSeed("acme", "widgets", 7, "abc123")
		seed2 := determinism.GenerateSeed("acme", "widgets", 7, "def456")

		assert.NotEqual(t, seed1, seed2)
	})

	t.Run("changes with the PR number", func(t *testing.T) {
		seed1 := determinism.GenerateSeed("acme", "widgets", 7, "abc123")
		seed2 := determinism.GenerateSeed("acme", "widgets", 8, "abc123")

		assert.NotEqual(t, seed1, seed2)
	})

	t.Run("fits in int64", func(t *testing.T) {
		seed := determinism.GenerateSeed("acme", "widgets", 7, "abc123")

		assert.LessOrEqual(t, seed, uint64(math.MaxInt64))
	})
}

func TestGenerateLocalSeed(t *testing.T) {
	t.Run("deterministic for same refs", func(t *testing.T) {
		seed1 := determinism.GenerateLocalSeed("main", "feature")
		seed2 := determinism.GenerateLocalSeed("main", "feature")

		assert.Equal(t, seed1, seed2)
	})

	t.Run("order of refs matters", func(t *testing.T) {
		seed1 := determinism.GenerateLocalSeed("main", "develop")
		seed2 := determinism.GenerateLocalSeed("develop", "main")

		assert.NotEqual(t, seed1, seed2)
	})
}
