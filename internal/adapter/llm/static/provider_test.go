package static_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njohnstone/prreview/internal/adapter/llm/static"
	"github.com/njohnstone/prreview/internal/domain"
	"github.com/njohnstone/prreview/internal/usecase/review"
)

func TestStaticProvider_Review(t *testing.T) {
	provider := static.NewProvider("offline")

	first, err := provider.Review(context.Background(), review.ProviderRequest{Action: domain.ActionReview})
	require.NoError(t, err)
	second, err := provider.Review(context.Background(), review.ProviderRequest{Action: domain.ActionReview})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "static", first.ProviderName)
	assert.Equal(t, "offline", first.ModelName)
	require.NotEmpty(t, first.Suggestions)
	assert.Empty(t, first.Summary)
}

func TestStaticProvider_Summary(t *testing.T) {
	provider := static.NewProvider("offline")

	got, err := provider.Review(context.Background(), review.ProviderRequest{Action: domain.ActionSummary})
	require.NoError(t, err)

	assert.NotEmpty(t, got.Summary)
	assert.Empty(t, got.Suggestions)
}
