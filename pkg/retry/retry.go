// Package retry implements bounded exponential backoff with jitter.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Config defines retry behavior with exponential backoff.
type Config struct {
	MaxAttempts  int           // Total attempts, including the first call
	InitialDelay time.Duration // Delay before the second attempt
	MaxDelay     time.Duration // Cap on the backoff delay
	Multiplier   float64       // Backoff growth factor per attempt
	JitterFactor float64       // 0.0-1.0, +/- fraction of the delay, prevents thundering herd
}

// DefaultConfig returns the defaults used for remote analysis calls:
// 3 attempts with a 2s initial delay doubling each time, capped at 30s,
// with 25% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.25,
	}
}

// applyJitter randomizes a delay by +/- delay*jitterFactor.
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// DoIf executes fn up to cfg.MaxAttempts times, backing off between attempts,
// but only when retryable reports the error as transient. Non-transient
// errors propagate immediately after a single attempt: a malformed request or
// an auth failure will not succeed on retry, and burning the retry budget on
// it only delays the caller. After the final attempt the last error is
// returned. Backoff waits respect context cancellation.
func DoIf[T any](ctx context.Context, cfg *Config, fn func() (T, error), retryable func(error) bool) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var result T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}
		lastErr = err
		result = r

		if !retryable(err) {
			return result, err
		}

		if attempt < attempts {
			select {
			case <-time.After(applyJitter(delay, cfg.JitterFactor)):
				delay = time.Duration(float64(delay) * cfg.Multiplier)
				if delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	return result, lastErr
}

// Do is the error-only variant of DoIf for operations without a result value.
func Do(ctx context.Context, cfg *Config, fn func() error, retryable func(error) bool) error {
	_, err := DoIf(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	}, retryable)
	return err
}
