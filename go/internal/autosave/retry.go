package autosave

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// RetryPolicy is the retry behavior as a plain value, independently
// testable from any operation it wraps.
type RetryPolicy struct {
	// MaxAttempts counts the first try. Only errors accepted by Retryable
	// consume further attempts.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt; each further wait
	// doubles it.
	BaseDelay time.Duration
	// Retryable classifies an error as worth another attempt.
	Retryable func(error) bool
}

// DefaultRetryPolicy matches the save pipeline contract: three attempts,
// exponential backoff from one second, transient errors only.
func DefaultRetryPolicy(retryable func(error) bool) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Retryable:   retryable,
	}
}

// RunWithRetry executes op under the policy. A non-retryable error or an
// exhausted final attempt is returned as-is. Context cancellation aborts
// between attempts and surfaces as the context's error, which callers
// treat as an intentional abandon, not a failure.
func RunWithRetry(ctx context.Context, clock clockwork.Clock, policy RetryPolicy, op func(context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := policy.BaseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clock.After(delay):
			}
			delay *= 2
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if policy.Retryable == nil || !policy.Retryable(err) {
			return err
		}
	}
	return fmt.Errorf("exhausted %d attempts: %w", attempts, lastErr)
}
