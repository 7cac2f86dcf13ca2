// Package openai talks to any OpenAI-compatible chat-completion endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/njohnstone/prreview/internal/adapter/llmhttp"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultTimeout = 90 * time.Second
)

// isReasoningModel returns true for o-series reasoning models. These have
// different API requirements: max_completion_tokens instead of max_tokens,
// and no temperature, seed, or response_format.
func isReasoningModel(model string) bool {
	modelLower := strings.ToLower(model)
	return strings.HasPrefix(modelLower, "o1-") ||
		strings.HasPrefix(modelLower, "o3-") ||
		strings.HasPrefix(modelLower, "o4-")
}

// HTTPClient is an HTTP client for an OpenAI-compatible API.
type HTTPClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	retry   llmhttp.RetryConfig
	logger  llmhttp.Logger
}

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithBaseURL points the client at a non-default endpoint, such as a
// self-hosted OpenAI-compatible server or a test server.
func WithBaseURL(url string) Option {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		c.client.Timeout = timeout
	}
}

// WithRetryConfig overrides the transport backoff settings.
func WithRetryConfig(config llmhttp.RetryConfig) Option {
	return func(c *HTTPClient) {
		c.retry = config
	}
}

// WithLogger attaches a structured call logger.
func WithLogger(logger llmhttp.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// NewHTTPClient creates a client for the given model.
func NewHTTPClient(apiKey, model string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		retry:   llmhttp.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateCompletion makes one chat-completion call and returns the raw
// reply text. Transient failures are retried with backoff inside the call;
// the pipeline above never re-runs it.
func (c *HTTPClient) CreateCompletion(ctx context.Context, req Request) (Response, error) {
	reqBody := ChatCompletionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
	}

	reasoning := isReasoningModel(c.model)
	if req.MaxTokens > 0 {
		if reasoning {
			reqBody.MaxCompletionTokens = req.MaxTokens
		} else {
			reqBody.MaxTokens = req.MaxTokens
		}
	}
	if !reasoning {
		zero := 0.0
		reqBody.Temperature = &zero
		reqBody.Seed = req.Seed
		reqBody.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	if c.logger != nil {
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Service:     "openai",
			Model:       c.model,
			Timestamp:   time.Now(),
			PromptChars: len(req.System) + len(req.Prompt),
			APIKey:      c.apiKey,
		})
	}

	start := time.Now()
	var response Response
	operation := func(ctx context.Context) error {
		// Build the request per attempt; the body reader is single-use.
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/chat/completions", bytes.NewReader(jsonData))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return llmhttp.NewTimeoutError("openai", err.Error())
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return c.handleErrorResponse(resp.StatusCode, body)
		}

		var chatResp ChatCompletionResponse
		if err := json.Unmarshal(body, &chatResp); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
		if len(chatResp.Choices) == 0 {
			return fmt.Errorf("no choices in response")
		}

		response = Response{
			Model:        chatResp.Model,
			Text:         chatResp.Choices[0].Message.Content,
			TokensIn:     chatResp.Usage.PromptTokens,
			TokensOut:    chatResp.Usage.CompletionTokens,
			FinishReason: chatResp.Choices[0].FinishReason,
		}
		return nil
	}

	if err := llmhttp.RetryWithBackoff(ctx, operation, c.retry); err != nil {
		if c.logger != nil {
			errLog := llmhttp.ErrorLog{
				Service:   "openai",
				Model:     c.model,
				Timestamp: time.Now(),
				Duration:  time.Since(start),
				Error:     err,
			}
			var typed *llmhttp.Error
			if errors.As(err, &typed) {
				errLog.ErrorType = typed.Type
				errLog.StatusCode = typed.StatusCode
				errLog.Retryable = typed.Retryable
			}
			c.logger.LogError(ctx, errLog)
		}
		return Response{}, err
	}

	if c.logger != nil {
		c.logger.LogResponse(ctx, llmhttp.ResponseLog{
			Service:      "openai",
			Model:        response.Model,
			Timestamp:    time.Now(),
			Duration:     time.Since(start),
			TokensIn:     response.TokensIn,
			TokensOut:    response.TokensOut,
			StatusCode:   http.StatusOK,
			FinishReason: response.FinishReason,
		})
	}
	return response, nil
}

// handleErrorResponse converts HTTP error responses to typed errors.
func (c *HTTPClient) handleErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	} else if len(body) > 0 && len(body) < 200 {
		// Short non-JSON bodies are usually proxy errors worth surfacing.
		message = string(body)
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return llmhttp.NewAuthenticationError("openai", message)
	case http.StatusNotFound:
		return llmhttp.NewNotFoundError("openai", message)
	case http.StatusTooManyRequests:
		return llmhttp.NewRateLimitError("openai", message)
	case http.StatusBadRequest:
		return llmhttp.NewInvalidRequestError("openai", message)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return llmhttp.NewServiceUnavailableError("openai", message)
	default:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeUnknown,
			Message:    message,
			StatusCode: statusCode,
			Service:    "openai",
		}
	}
}
