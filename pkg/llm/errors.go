package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies LLM call failures.
type ErrorType string

const (
	ErrorTypeAuth      ErrorType = "auth"       // Bad or missing credentials
	ErrorTypeModel     ErrorType = "model"      // Model not found or misconfigured
	ErrorTypeEndpoint  ErrorType = "endpoint"   // Endpoint unreachable or wrong URL
	ErrorTypeRateLimit ErrorType = "rate_limit" // 429 / resource exhaustion
	ErrorTypeTimeout   ErrorType = "timeout"    // Deadline exceeded on the call
	ErrorTypeCanceled  ErrorType = "canceled"   // Caller canceled the context
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error represents a structured LLM error with classification.
type Error struct {
	Type       ErrorType // Classification of the error
	Message    string    // Human-readable message
	Retryable  bool      // Whether the operation can be retried
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether the operation can be retried. Satisfies the
// predicate used by the retry package without importing it.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a new structured LLM error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ClassifyError categorizes an error and returns a structured Error.
//
// Only rate-limit signals (HTTP 429, RESOURCE_EXHAUSTED) and per-call
// timeouts are marked retryable. Everything else is assumed non-transient:
// an auth failure or malformed request will fail the same way on attempt two,
// so retrying it only wastes the budget and delays the degraded result.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	// Already classified
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	statusCode := 0
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 504} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			statusCode = code
			break
		}
	}

	classified := func(t ErrorType, msg string, retryable bool) *Error {
		e := NewError(t, msg, retryable, err)
		e.StatusCode = statusCode
		return e
	}

	// Rate limiting (the only remote failure worth a backoff-retry)
	if strings.Contains(errStr, "429") || strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests") {
		return classified(ErrorTypeRateLimit, "rate limited", true)
	}

	// Caller cancellation is not a transient remote failure
	if errors.Is(err, context.Canceled) || strings.Contains(lower, "context canceled") {
		return classified(ErrorTypeCanceled, "request canceled", false)
	}

	// Per-call deadline expiry (retryable; the next attempt gets a fresh deadline)
	if strings.Contains(lower, "deadline exceeded") || strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "timed out") {
		return classified(ErrorTypeTimeout, "request timeout", true)
	}

	// Authentication errors
	if strings.Contains(errStr, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") {
		return classified(ErrorTypeAuth, "authentication failed", false)
	}

	// Model not found
	if strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")) {
		return classified(ErrorTypeModel, "model not found", false)
	}

	// Endpoint problems
	if strings.Contains(errStr, "404") || strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") {
		return classified(ErrorTypeEndpoint, "endpoint unreachable", false)
	}

	return classified(ErrorTypeUnknown, "llm error", false)
}

// IsRetryable returns true if the error is a transient LLM failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return ClassifyError(err).Retryable
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeUnknown
}
