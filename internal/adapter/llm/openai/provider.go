package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/njohnstone/prreview/internal/adapter/llmhttp"
	"github.com/njohnstone/prreview/internal/domain"
	"github.com/njohnstone/prreview/internal/usecase/review"
)

const providerName = "openai"

var _ review.Provider = (*Provider)(nil)

// Client abstracts the chat-completion client behaviour we need.
type Client interface {
	CreateCompletion(ctx context.Context, req Request) (Response, error)
}

// Provider implements the usecase Provider port for OpenAI-compatible
// endpoints.
type Provider struct {
	model  string
	client Client
	logger llmhttp.Logger
}

// NewProvider constructs a Provider for the supplied model.
func NewProvider(model string, client Client, logger llmhttp.Logger) *Provider {
	return &Provider{
		model:  model,
		client: client,
		logger: logger,
	}
}

// Review sends the prompt and translates the structured reply. A reply
// that cannot be parsed degrades to an empty review rather than an error:
// transport and API failures are the caller's signal to skip posting,
// malformed model output is not fatal.
func (p *Provider) Review(ctx context.Context, req review.ProviderRequest) (domain.Review, error) {
	if p.client == nil {
		return domain.Review{}, fmt.Errorf("openai client missing")
	}

	response, err := p.client.CreateCompletion(ctx, Request{
		System:    req.System,
		Prompt:    req.Prompt,
		Seed:      req.Seed,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return domain.Review{}, err
	}

	result := domain.Review{
		ProviderName: providerName,
		ModelName:    response.Model,
	}
	if result.ModelName == "" {
		result.ModelName = p.model
	}

	if req.Action == domain.ActionSummary {
		summary, err := parseSummaryReply(response.Text)
		if err != nil {
			p.logWarning(ctx, "could not parse model summary reply", err)
			return result, nil
		}
		result.Summary = summary
		return result, nil
	}

	suggestions, err := parseReviewReply(response.Text)
	if err != nil {
		p.logWarning(ctx, "could not parse model review reply", err)
		return result, nil
	}
	result.Suggestions = suggestions
	return result, nil
}

func (p *Provider) logWarning(ctx context.Context, message string, err error) {
	if p.logger != nil {
		p.logger.LogWarning(ctx, message, map[string]any{"error": err.Error()})
	}
}

// reviewReply mirrors the JSON contract the system instruction asks for.
type reviewReply struct {
	Reviews []struct {
		Path          string          `json:"path"`
		LineNumber    json.RawMessage `json:"lineNumber"`
		ReviewComment string          `json:"reviewComment"`
	} `json:"reviews"`
}

type summaryReply struct {
	Summary string `json:"summary"`
}

// parseReviewReply extracts suggestions from the model's JSON reply.
// Entries without a path are dropped; line numbers arrive as numbers or
// strings depending on the model, so both are accepted.
func parseReviewReply(text string) ([]domain.Suggestion, error) {
	jsonText := extractJSON(text)

	var reply reviewReply
	if err := json.Unmarshal([]byte(jsonText), &reply); err != nil {
		return nil, fmt.Errorf("parse review JSON: %w", err)
	}

	suggestions := make([]domain.Suggestion, 0, len(reply.Reviews))
	for _, entry := range reply.Reviews {
		if entry.Path == "" || entry.ReviewComment == "" {
			continue
		}
		suggestions = append(suggestions, domain.Suggestion{
			Path: entry.Path,
			Line: coerceLine(entry.LineNumber),
			Body: entry.ReviewComment,
		})
	}
	return suggestions, nil
}

// parseSummaryReply extracts the summary text from the model's JSON reply.
func parseSummaryReply(text string) (string, error) {
	jsonText := extractJSON(text)

	var reply summaryReply
	if err := json.Unmarshal([]byte(jsonText), &reply); err != nil {
		return "", fmt.Errorf("parse summary JSON: %w", err)
	}
	if reply.Summary == "" {
		return "", fmt.Errorf("reply has no summary field")
	}
	return reply.Summary, nil
}

// coerceLine accepts `"lineNumber": 12` and `"lineNumber": "12"`.
// Unparseable values become 0 and the mapper drops the comment later.
func coerceLine(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var asInt int
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return asInt
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(asString)); err == nil {
			return n
		}
	}
	return 0
}

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// extractJSON pulls a JSON object out of a markdown code fence, falling
// back to the raw text. Models occasionally wrap JSON in fences even when
// told not to.
func extractJSON(text string) string {
	if matches := fencedJSONRe.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}
	return strings.TrimSpace(text)
}
