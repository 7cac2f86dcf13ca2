// Package static provides an offline provider for dry runs and tests.
package static

import (
	"context"

	"github.com/njohnstone/prreview/internal/domain"
	"github.com/njohnstone/prreview/internal/usecase/review"
)

const providerName = "static"

var _ review.Provider = (*Provider)(nil)

// Provider implements the usecase Provider port without network access.
type Provider struct {
	model string
}

// NewProvider constructs a static Provider.
func NewProvider(model string) *Provider {
	return &Provider{
		model: model,
	}
}

// Review returns a fixed, deterministic review for the requested action.
func (p *Provider) Review(ctx context.Context, req review.ProviderRequest) (domain.Review, error) {
	result := domain.Review{
		ProviderName: providerName,
		ModelName:    p.model,
	}

	if req.Action == domain.ActionSummary {
		result.Summary = "This is a static summary from the offline provider."
		return result, nil
	}

	result.Suggestions = []domain.Suggestion{
		{
			Path: "internal/adapter/llm/static/provider.go",
			Line: 1,
			Body: "This is a static suggestion from the offline provider.",
		},
	}
	return result, nil
}
