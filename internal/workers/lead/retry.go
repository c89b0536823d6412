// Package lead holds the follow-up workers that run after an intake submission is stored.
package lead

import (
	"context"
	"time"

	"lead-intake/internal/common/errors"
)

// DefaultBackoff is the pause before the first retry; later retries wait proportionally longer.
const DefaultBackoff = 200 * time.Millisecond

// Attempt calls fn once plus up to retries more times while it returns a retryable error.
// An error is retryable when both its code and its Retryable flag allow it.
// It stops early when ctx is done and returns the last error seen.
func Attempt(ctx context.Context, retries int, backoff time.Duration, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return err
			case <-time.After(backoff * time.Duration(attempt)):
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if stdErr := errors.Normalize(err); !stdErr.Retryable || !errors.IsRetryableErrorCode(stdErr.Code) {
			return err
		}
	}
	return err
}
