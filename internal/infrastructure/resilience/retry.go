package resilience

import (
	"context"
	"time"
)

// RetryPolicy retries transient failures with an increasing delay sequence.
type RetryPolicy struct {
	MaxAttempts int
	Delays      []time.Duration
	// Classify decides whether an error is retryable. Defaults to IsTransient.
	Classify func(error) bool
}

// DefaultRetryPolicy waits 2s, 5s, 10s and 20s between attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		Delays:      []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second, 20 * time.Second},
	}
}

func (p RetryPolicy) delay(retry int) time.Duration {
	if len(p.Delays) == 0 {
		return 0
	}
	if retry >= len(p.Delays) {
		return p.Delays[len(p.Delays)-1]
	}
	return p.Delays[retry]
}

// Do runs fn until it succeeds, returns a permanent error, runs out of attempts,
// or ctx ends. A retry whose delay would outlive ctx's deadline is not attempted.
// onRetry, when set, is called before every wait.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error, onRetry func(attempt int, delay time.Duration, err error)) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	classify := p.Classify
	if classify == nil {
		classify = IsTransient
	}

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= attempts || !classify(err) || ctx.Err() != nil {
			return err
		}

		wait := p.delay(attempt - 1)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			return err
		}
		if onRetry != nil {
			onRetry(attempt, wait, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
