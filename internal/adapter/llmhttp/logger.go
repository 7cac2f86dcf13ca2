package llmhttp

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Logger provides structured logging for outbound API calls and pipeline
// milestones.
type Logger interface {
	// LogRequest logs an outgoing API request (API key redacted).
	LogRequest(ctx context.Context, req RequestLog)

	// LogResponse logs a response with timing and token counts.
	LogResponse(ctx context.Context, resp ResponseLog)

	// LogError logs a failed API call.
	LogError(ctx context.Context, err ErrorLog)

	// LogInfo logs a pipeline milestone with structured fields.
	LogInfo(ctx context.Context, message string, fields map[string]any)

	// LogWarning logs a recoverable problem with structured fields.
	LogWarning(ctx context.Context, message string, fields map[string]any)
}

// RequestLog describes an outgoing request.
type RequestLog struct {
	Service     string
	Model       string
	Timestamp   time.Time
	PromptChars int
	APIKey      string // redacted to the last 4 characters before output
}

// ResponseLog describes a completed request.
type ResponseLog struct {
	Service      string
	Model        string
	Timestamp    time.Time
	Duration     time.Duration
	TokensIn     int
	TokensOut    int
	StatusCode   int
	FinishReason string
}

// ErrorLog describes a failed request.
type ErrorLog struct {
	Service    string
	Model      string
	Timestamp  time.Time
	Duration   time.Duration
	Error      error
	ErrorType  ErrorType
	StatusCode int
	Retryable  bool
}

// LogLevel is the logging verbosity threshold.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// LogFormat selects the output encoding.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// DefaultLogger writes structured logs through the standard log package.
type DefaultLogger struct {
	level      LogLevel
	format     LogFormat
	redactKeys bool
}

// NewDefaultLogger creates a logger with the given threshold and format.
func NewDefaultLogger(level LogLevel, format LogFormat, redactKeys bool) *DefaultLogger {
	return &DefaultLogger{level: level, format: format, redactKeys: redactKeys}
}

// LogRequest logs an API request at debug level.
func (l *DefaultLogger) LogRequest(ctx context.Context, req RequestLog) {
	if l.level > LogLevelDebug {
		return
	}
	key := l.RedactAPIKey(req.APIKey)
	if l.format == LogFormatJSON {
		log.Printf(`{"level":"debug","type":"request","service":"%s","model":"%s","timestamp":"%s","prompt_chars":%d,"api_key":"%s"}`,
			req.Service, req.Model, req.Timestamp.Format(time.RFC3339), req.PromptChars, key)
	} else {
		log.Printf("[DEBUG] %s/%s: request sent (prompt=%d chars, key=%s)",
			req.Service, req.Model, req.PromptChars, key)
	}
}

// LogResponse logs an API response at info level.
func (l *DefaultLogger) LogResponse(ctx context.Context, resp ResponseLog) {
	if l.level > LogLevelInfo {
		return
	}
	if l.format == LogFormatJSON {
		log.Printf(`{"level":"info","type":"response","service":"%s","model":"%s","timestamp":"%s","duration_ms":%d,"tokens_in":%d,"tokens_out":%d,"status_code":%d,"finish_reason":"%s"}`,
			resp.Service, resp.Model, resp.Timestamp.Format(time.RFC3339),
			resp.Duration.Milliseconds(), resp.TokensIn, resp.TokensOut,
			resp.StatusCode, resp.FinishReason)
	} else {
		log.Printf("[INFO] %s/%s: response received (duration=%.1fs, tokens=%d/%d)",
			resp.Service, resp.Model, resp.Duration.Seconds(), resp.TokensIn, resp.TokensOut)
	}
}

// LogError logs a failed API call.
func (l *DefaultLogger) LogError(ctx context.Context, e ErrorLog) {
	if l.level > LogLevelError {
		return
	}
	if l.format == LogFormatJSON {
		log.Printf(`{"level":"error","type":"error","service":"%s","model":"%s","timestamp":"%s","duration_ms":%d,"error":"%s","status_code":%d,"retryable":%t}`,
			e.Service, e.Model, e.Timestamp.Format(time.RFC3339),
			e.Duration.Milliseconds(), RedactURLSecrets(e.Error.Error()), e.StatusCode, e.Retryable)
	} else {
		retryable := "non-retryable"
		if e.Retryable {
			retryable = "retryable"
		}
		log.Printf("[ERROR] %s/%s: API call failed (status=%d, %s): %v",
			e.Service, e.Model, e.StatusCode, retryable, RedactURLSecrets(e.Error.Error()))
	}
}

// LogInfo logs a pipeline milestone.
func (l *DefaultLogger) LogInfo(ctx context.Context, message string, fields map[string]any) {
	if l.level > LogLevelInfo {
		return
	}
	l.logFields("info", "INFO", message, fields)
}

// LogWarning logs a recoverable problem. Warnings are always emitted.
func (l *DefaultLogger) LogWarning(ctx context.Context, message string, fields map[string]any) {
	l.logFields("warning", "WARN", message, fields)
}

func (l *DefaultLogger) logFields(jsonLevel, humanLevel, message string, fields map[string]any) {
	if l.format == LogFormatJSON {
		log.Printf(`{"level":"%s","message":"%s","fields":"%s"}`, jsonLevel, message, formatFields(fields))
		return
	}
	if len(fields) == 0 {
		log.Printf("[%s] %s", humanLevel, message)
		return
	}
	log.Printf("[%s] %s (%s)", humanLevel, message, formatFields(fields))
}

func formatFields(fields map[string]any) string {
	out := ""
	for k, v := range fields {
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%s=%v", k, v)
	}
	return out
}

// RedactAPIKey keeps only the last 4 characters of an API key.
func (l *DefaultLogger) RedactAPIKey(key string) string {
	if !l.redactKeys {
		return key
	}
	if len(key) <= 4 {
		return "[REDACTED]"
	}
	return fmt.Sprintf("[REDACTED-%s]", key[len(key)-4:])
}
