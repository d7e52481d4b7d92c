package clock

import (
	"context"
	"time"
)

// RetryConfig bounds the exponential backoff used for transient
// infrastructure errors (persistence conflicts, signing-service
// timeouts, chain-adapter calls).
type RetryConfig struct {
	Base       time.Duration
	Cap        time.Duration
	MaxAttempts int
}

// DefaultRetryConfig is base 500ms, cap 30s, 3 attempts. Callers
// needing a different attempt budget for a specific operation
// construct their own RetryConfig.
var DefaultRetryConfig = RetryConfig{
	Base:        500 * time.Millisecond,
	Cap:         30 * time.Second,
	MaxAttempts: 3,
}

// Retry calls fn up to cfg.MaxAttempts times, sleeping an exponentially
// growing backoff (doubling each attempt, capped at cfg.Cap) between
// attempts. It returns the last error if every attempt fails, or nil on
// first success. It stops early if ctx is cancelled.
func Retry(ctx context.Context, cfg RetryConfig, fn func(attempt int) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetryConfig.MaxAttempts
	}
	if cfg.Base <= 0 {
		cfg.Base = DefaultRetryConfig.Base
	}
	if cfg.Cap <= 0 {
		cfg.Cap = DefaultRetryConfig.Cap
	}

	var lastErr error
	backoff := cfg.Base
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > cfg.Cap {
			backoff = cfg.Cap
		}
	}
	return lastErr
}
