// FILE: internal/scrape/retry.go
package scrape

import (
	"context"
	"time"
)

// Retry runs fn up to maxAttempts times with a flat delay between
// attempts. It stops early when fn succeeds, when isRetryable rejects
// the failure, or when ctx is done while waiting. It returns the number
// of attempts made and the last error fn produced (nil on success); a
// cancelled wait returns the context error instead.
func Retry(ctx context.Context, maxAttempts int, delay time.Duration, isRetryable func(error) bool, fn func() error) (int, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return attempt, nil
		}
		if isRetryable != nil && !isRetryable(lastErr) {
			return attempt, lastErr
		}
		if attempt == maxAttempts {
			return attempt, lastErr
		}
		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(delay):
		}
	}
}
