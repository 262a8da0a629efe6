package resilience

import (
	"context"
	"time"

	"github.com/truthlens/factwave/src/verify/types"
	"github.com/truthlens/factwave/src/webclient"
)

// DefaultMaxRetries is the number of retries after the initial attempt.
const DefaultMaxRetries = 3

// DefaultBaseDelay is the backoff unit: the delay before retry n is
// 2^(n-1) * DefaultBaseDelay.
const DefaultBaseDelay = time.Second

// QueryFunc is one adapter invocation.
type QueryFunc func(ctx context.Context) ([]types.RawResult, error)

// WithRetry invokes fn, retrying transient failures with exponential backoff.
// The last error is returned after exhausting maxRetries. Non-retryable
// errors (permanent 4xx) abort immediately.
func WithRetry(ctx context.Context, maxRetries int, fn QueryFunc) ([]types.RawResult, error) {
	return WithRetryDelay(ctx, maxRetries, DefaultBaseDelay, fn)
}

// WithRetryDelay is WithRetry with a configurable backoff unit.
func WithRetryDelay(ctx context.Context, maxRetries int, baseDelay time.Duration, fn QueryFunc) ([]types.RawResult, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay << (attempt - 1)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		results, err := fn(ctx)
		if err == nil {
			return results, nil
		}
		lastErr = err
		if !webclient.IsRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}
