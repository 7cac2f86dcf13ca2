package openai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njohnstone/prreview/internal/adapter/llm/openai"
	"github.com/njohnstone/prreview/internal/domain"
	"github.com/njohnstone/prreview/internal/usecase/review"
)

type stubClient struct {
	requests []openai.Request
	response openai.Response
	err      error
}

func (s *stubClient) CreateCompletion(_ context.Context, req openai.Request) (openai.Response, error) {
	s.requests = append(s.requests, req)
	return s.response, s.err
}

func TestProviderReview_ParsesSuggestions(t *testing.T) {
	client := &stubClient{response: openai.Response{
		Model: "gpt-4o",
		Text: `{"reviews": [
			{"path": "main.go", "lineNumber": 12, "reviewComment": "unchecked error"},
			{"path": "util.go", "lineNumber": "7", "reviewComment": "possible nil deref"},
			{"path": "", "lineNumber": 3, "reviewComment": "dropped, no path"}
		]}`,
	}}
	provider := openai.NewProvider("gpt-4o", client, nil)

	seed := uint64(42)
	got, err := provider.Review(context.Background(), review.ProviderRequest{
		Action:    domain.ActionReview,
		System:    "sys",
		Prompt:    "prompt",
		Seed:      &seed,
		MaxTokens: 4096,
	})
	require.NoError(t, err)

	require.Len(t, client.requests, 1)
	assert.Equal(t, "sys", client.requests[0].System)
	require.NotNil(t, client.requests[0].Seed)
	assert.Equal(t, seed, *client.requests[0].Seed)
	assert.Equal(t, 4096, client.requests[0].MaxTokens)

	assert.Equal(t, "openai", got.ProviderName)
	assert.Equal(t, "gpt-4o", got.ModelName)
	require.Len(t, got.Suggestions, 2)
	assert.Equal(t, domain.Suggestion{Path: "main.go", Line: 12, Body: "unchecked error"}, got.Suggestions[0])
	assert.Equal(t, domain.Suggestion{Path: "util.go", Line: 7, Body: "possible nil deref"}, got.Suggestions[1])
}

func TestProviderReview_FencedJSON(t *testing.T) {
	client := &stubClient{response: openai.Response{
		Text: "Here you go:\n```json\n{\"reviews\": [{\"path\": \"a.go\", \"lineNumber\": 1, \"reviewComment\": \"x\"}]}\n```",
	}}
	provider := openai.NewProvider("gpt-4o", client, nil)

	got, err := provider.Review(context.Background(), review.ProviderRequest{Action: domain.ActionReview})
	require.NoError(t, err)
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, "a.go", got.Suggestions[0].Path)
}

func TestProviderReview_MalformedReplyDegradesToEmpty(t *testing.T) {
	client := &stubClient{response: openai.Response{Text: "I cannot review this PR, sorry."}}
	provider := openai.NewProvider("gpt-4o", client, nil)

	got, err := provider.Review(context.Background(), review.ProviderRequest{Action: domain.ActionReview})
	require.NoError(t, err)
	assert.Empty(t, got.Suggestions)
	assert.Empty(t, got.Summary)
}

func TestProviderReview_Summary(t *testing.T) {
	client := &stubClient{response: openai.Response{Text: `{"summary": "Adds retry logic to the fetcher."}`}}
	provider := openai.NewProvider("gpt-4o", client, nil)

	got, err := provider.Review(context.Background(), review.ProviderRequest{Action: domain.ActionSummary})
	require.NoError(t, err)
	assert.Equal(t, "Adds retry logic to the fetcher.", got.Summary)
	assert.Empty(t, got.Suggestions)
}

func TestProviderReview_ClientErrorPropagates(t *testing.T) {
	client := &stubClient{err: errors.New("503 from upstream")}
	provider := openai.NewProvider("gpt-4o", client, nil)

	_, err := provider.Review(context.Background(), review.ProviderRequest{Action: domain.ActionReview})
	require.Error(t, err)
}

func TestProviderReview_UnparseableLineBecomesZero(t *testing.T) {
	client := &stubClient{response: openai.Response{
		Text: `{"reviews": [{"path": "a.go", "lineNumber": "around line ten", "reviewComment": "x"}]}`,
	}}
	provider := openai.NewProvider("gpt-4o", client, nil)

	got, err := provider.Review(context.Background(), review.ProviderRequest{Action: domain.ActionReview})
	require.NoError(t, err)
	require.Len(t, got.Suggestions, 1)
	assert.Zero(t, got.Suggestions[0].Line)
}
