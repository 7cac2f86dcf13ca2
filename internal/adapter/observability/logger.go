// Package observability wires the shared structured logger into the
// pipeline ports.
package observability

import (
	"context"

	"github.com/njohnstone/prreview/internal/adapter/llmhttp"
	"github.com/njohnstone/prreview/internal/usecase/review"
)

// ReviewLogger adapts llmhttp.Logger to the review.Logger port, so the
// orchestrator and the API clients share one logging setup.
type ReviewLogger struct {
	logger llmhttp.Logger
}

// NewReviewLogger creates a new review logger adapter.
func NewReviewLogger(logger llmhttp.Logger) review.Logger {
	return &ReviewLogger{logger: logger}
}

// LogInfo logs an informational message with structured fields.
func (l *ReviewLogger) LogInfo(ctx context.Context, message string, fields map[string]any) {
	l.logger.LogInfo(ctx, message, fields)
}

// LogWarning logs a warning message with structured fields.
func (l *ReviewLogger) LogWarning(ctx context.Context, message string, fields map[string]any) {
	l.logger.LogWarning(ctx, message, fields)
}
