package provider

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Retryer re-runs a call on retryable provider errors with exponential
// backoff. Non-retryable errors propagate immediately; the final
// attempt's failure is the one returned.
type Retryer struct {
	// Attempts is the number of additional tries after the first failure.
	Attempts int

	// Backoff overrides the delay computation. Nil selects the default
	// exponential backoff with jitter. Tests use this to avoid sleeping.
	Backoff func(attempt int, hint time.Duration) time.Duration
}

// Do runs call until it succeeds, fails with a non-retryable error, the
// retry budget is spent, or ctx is done.
func (r Retryer) Do(ctx context.Context, call func(ctx context.Context) error) error {
	backoff := r.Backoff
	if backoff == nil {
		backoff = ExpBackoff
	}

	for attempt := 0; ; attempt++ {
		err := call(ctx)
		if err == nil {
			return nil
		}

		var pe *Error
		if !errors.As(err, &pe) || !pe.Retryable() || attempt >= r.Attempts {
			return err
		}

		select {
		case <-time.After(backoff(attempt, pe.RetryAfter)):
		case <-ctx.Done():
			return err
		}
	}
}

// ExpBackoff computes the delay before retry number attempt+1: base 1s
// doubling per attempt, plus up to 10% random jitter, computed freshly
// each attempt. A positive Retry-After hint from the provider replaces
// the computed delay.
func ExpBackoff(attempt int, hint time.Duration) time.Duration {
	if hint > 0 {
		return hint
	}
	base := time.Second << attempt
	jitter := time.Duration(rand.Int64N(int64(base)/10 + 1))
	return base + jitter
}
