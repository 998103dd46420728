package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/retry"
)

// RetryingClient wraps an LLMClient with the analysis retry policy: bounded
// exponential backoff for rate-limit and timeout failures, immediate
// propagation for everything else. It also applies a per-call deadline so a
// hung remote call degrades into a retryable timeout instead of stalling the
// whole batch.
type RetryingClient struct {
	inner       LLMClient
	retryConfig *retry.Config
	callTimeout time.Duration
	logger      *zap.Logger
}

// NewRetryingClient wraps inner with retry and per-call deadline behavior.
// Pass nil retryConfig for defaults (3 attempts, 2s base delay, doubling,
// jittered). A callTimeout of 0 disables the per-call deadline.
func NewRetryingClient(inner LLMClient, retryConfig *retry.Config, callTimeout time.Duration, logger *zap.Logger) *RetryingClient {
	if retryConfig == nil {
		retryConfig = retry.DefaultConfig()
	}
	return &RetryingClient{
		inner:       inner,
		retryConfig: retryConfig,
		callTimeout: callTimeout,
		logger:      logger.Named("llm-retry"),
	}
}

// GenerateResponse implements LLMClient.
func (c *RetryingClient) GenerateResponse(
	ctx context.Context,
	prompt string,
	systemMessage string,
	opts GenerateOptions,
) (*GenerateResult, error) {
	attempt := 0
	result, err := retry.DoIf(ctx, c.retryConfig, func() (*GenerateResult, error) {
		attempt++
		callCtx := ctx
		if c.callTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.callTimeout)
			defer cancel()
		}

		res, err := c.inner.GenerateResponse(callCtx, prompt, systemMessage, opts)
		if err != nil && IsRetryable(err) {
			c.logger.Warn("transient LLM failure, will retry",
				zap.Int("attempt", attempt),
				zap.String("error_type", string(GetErrorType(err))),
				zap.Error(err))
		}
		return res, err
	}, IsRetryable)

	if err != nil {
		return nil, ClassifyError(err)
	}
	return result, nil
}

// GetModel returns the wrapped client's model name.
func (c *RetryingClient) GetModel() string {
	return c.inner.GetModel()
}
