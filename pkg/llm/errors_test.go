package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
	}{
		{"http 429", errors.New("error, status code: 429, message: slow down"), ErrorTypeRateLimit, true},
		{"resource exhausted", errors.New("rpc error: RESOURCE_EXHAUSTED"), ErrorTypeRateLimit, true},
		{"rate limit text", errors.New("Rate limit reached for requests"), ErrorTypeRateLimit, true},
		{"deadline exceeded", context.DeadlineExceeded, ErrorTypeTimeout, true},
		{"canceled", context.Canceled, ErrorTypeCanceled, false},
		{"unauthorized", errors.New("401 Unauthorized"), ErrorTypeAuth, false},
		{"invalid key", errors.New("invalid api key provided"), ErrorTypeAuth, false},
		{"model missing", errors.New("model gpt-5o does not exist"), ErrorTypeModel, false},
		{"endpoint 404", errors.New("404 page not found"), ErrorTypeEndpoint, false},
		{"connection refused", errors.New("dial tcp: connection refused"), ErrorTypeEndpoint, false},
		{"server error", errors.New("500 internal server error"), ErrorTypeUnknown, false},
		{"garbage", errors.New("something odd"), ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := ClassifyError(tt.err)
			assert.Equal(t, tt.wantType, classified.Type)
			assert.Equal(t, tt.retryable, classified.Retryable)
		})
	}
}

func TestClassifyError_Nil(t *testing.T) {
	assert.Nil(t, ClassifyError(nil))
}

func TestClassifyError_PreservesExistingError(t *testing.T) {
	original := NewError(ErrorTypeRateLimit, "rate limited", true, errors.New("429"))
	wrapped := fmt.Errorf("call failed: %w", original)

	classified := ClassifyError(wrapped)
	assert.Same(t, original, classified)
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewError(ErrorTypeUnknown, "wrapper", false, cause)
	assert.ErrorIs(t, err, cause)
}

func TestErrorString(t *testing.T) {
	err := NewError(ErrorTypeRateLimit, "rate limited", true, errors.New("429 slow down"))
	err.StatusCode = 429
	msg := err.Error()
	assert.Contains(t, msg, "rate_limit")
	assert.Contains(t, msg, "HTTP 429")
	assert.Contains(t, msg, "429 slow down")
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(errors.New("429 too many requests")))
	assert.False(t, IsRetryable(errors.New("400 bad request")))
	assert.True(t, IsRetryable(NewError(ErrorTypeRateLimit, "rate limited", true, nil)))
	assert.False(t, IsRetryable(NewError(ErrorTypeAuth, "bad key", false, nil)))
}
