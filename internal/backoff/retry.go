package backoff

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Retry executes fn up to maxAttempts times, sleeping between attempts
// according to the policy. Only errors for which retryable returns true
// trigger another attempt; anything else is returned immediately. Context
// cancellation is honored before each attempt and during the backoff sleep.
func Retry[T any](
	ctx context.Context,
	policy Policy,
	maxAttempts int,
	retryable func(error) bool,
	fn func(attempt int) (T, error),
) (T, error) {
	var result T
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("context cancelled: %w", err)
		}

		result, lastErr = fn(attempt)
		if lastErr == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry", "attempt", attempt)
			}
			return result, nil
		}

		if retryable != nil && !retryable(lastErr) {
			return result, lastErr
		}

		if attempt >= maxAttempts {
			break
		}

		delay := policy.Delay(attempt)
		slog.Warn("operation failed, retrying",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return result, fmt.Errorf("context cancelled during backoff: %w", ctx.Err())
		}
	}

	return result, fmt.Errorf("max attempts (%d) exhausted: %w", maxAttempts, lastErr)
}
