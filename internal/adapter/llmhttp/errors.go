// Package llmhttp carries the HTTP plumbing shared by the outbound API
// clients: typed errors, backoff, structured call logging, and secret
// redaction for log and error output.
package llmhttp

import "fmt"

// ErrorType categorizes an outbound API failure.
type ErrorType int

const (
	ErrTypeAuthentication ErrorType = iota
	ErrTypeRateLimit
	ErrTypeServiceUnavailable
	ErrTypeInvalidRequest
	ErrTypeTimeout
	ErrTypeNotFound
	ErrTypeUnknown
)

func (e ErrorType) String() string {
	switch e {
	case ErrTypeAuthentication:
		return "authentication error"
	case ErrTypeRateLimit:
		return "rate limit exceeded"
	case ErrTypeServiceUnavailable:
		return "service unavailable"
	case ErrTypeInvalidRequest:
		return "invalid request"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeNotFound:
		return "not found"
	default:
		return "unknown error"
	}
}

// Error is an outbound API error with enough context to decide on retry.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Retryable  bool
	Service    string // "openai", "github", ...
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s (status: %d)", e.Service, e.Type.String(), e.Message, e.StatusCode)
}

// Is matches on error type, so callers can use errors.Is with a prototype.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsRetryable reports whether retrying the call can succeed.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewAuthenticationError builds a non-retryable 401-class error.
func NewAuthenticationError(service, message string) *Error {
	return &Error{Type: ErrTypeAuthentication, Message: message, StatusCode: 401, Service: service}
}

// NewRateLimitError builds a retryable 429 error.
func NewRateLimitError(service, message string) *Error {
	return &Error{Type: ErrTypeRateLimit, Message: message, StatusCode: 429, Retryable: true, Service: service}
}

// NewServiceUnavailableError builds a retryable 5xx error.
func NewServiceUnavailableError(service, message string) *Error {
	return &Error{Type: ErrTypeServiceUnavailable, Message: message, StatusCode: 503, Retryable: true, Service: service}
}

// NewInvalidRequestError builds a non-retryable 400 error.
func NewInvalidRequestError(service, message string) *Error {
	return &Error{Type: ErrTypeInvalidRequest, Message: message, StatusCode: 400, Service: service}
}

// NewTimeoutError builds a retryable transport timeout error.
func NewTimeoutError(service, message string) *Error {
	return &Error{Type: ErrTypeTimeout, Message: message, Retryable: true, Service: service}
}

// NewNotFoundError builds a non-retryable 404 error, typically an unknown
// model identifier or repository.
func NewNotFoundError(service, message string) *Error {
	return &Error{Type: ErrTypeNotFound, Message: message, StatusCode: 404, Service: service}
}
