package helpers

import (
	"context"
	"time"

	"sjsage522/patentworker/pkg/errors"
)

// RetryOptions configures WithRetry.
type RetryOptions struct {
	Tries int
	Delay time.Duration
}

// DefaultRetryOptions mirrors the pacing the portals tolerate.
var DefaultRetryOptions = RetryOptions{Tries: 3, Delay: 1500 * time.Millisecond}

// WithRetry runs op until it succeeds, at most opts.Tries times, sleeping a fixed
// opts.Delay between attempts. The last error is returned when attempts run out.
// Attempts are numbered from 1. Non-retryable CrawlerErrors and context
// cancellation end the loop early.
func WithRetry[T any](ctx context.Context, opts RetryOptions, op func(attempt int) (T, error)) (T, error) {
	tries := opts.Tries
	if tries < 1 {
		tries = 1
	}

	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= tries; attempt++ {
		result, err := op(attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !errors.IsRetryable(err) || attempt == tries {
			break
		}
		if err := Sleep(ctx, opts.Delay); err != nil {
			return zero, lastErr
		}
	}
	return zero, lastErr
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
