// Package determinism derives reproducible sampling seeds.
package determinism

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// GenerateSeed creates a deterministic uint64 seed for one review scope.
// The same PR at the same head commit always seeds the model identically,
// so re-running a workflow does not shuffle the output.
// The returned value is masked to fit in int64 for APIs that use signed
// seed parameters.
func GenerateSeed(owner, repo string, prNumber int, headSHA string) uint64 {
	input := fmt.Sprintf("%s/%s#%d@%s", owner, repo, prNumber, headSHA)

	hash := sha256.Sum256([]byte(input))
	seed := binary.BigEndian.Uint64(hash[:8])

	return seed & 0x7FFFFFFFFFFFFFFF
}

// GenerateLocalSeed derives a seed from a ref pair for local mode.
func GenerateLocalSeed(baseRef, targetRef string) uint64 {
	input := fmt.Sprintf("%s|%s", baseRef, targetRef)

	hash := sha256.Sum256([]byte(input))
	seed := binary.BigEndian.Uint64(hash[:8])

	return seed & 0x7FFFFFFFFFFFFFFF
}
