package resilience

import (
	"context"
	"sync"
	"time"

	"whale_analyzer/internal/pkg/metrics"
)

// Limiter gates outbound calls.
type Limiter interface {
	Wait(ctx context.Context) error
}

// SlidingWindowLimiter admits at most limit calls in any rolling window.
// It is shared by every request that goes to the same vendor account.
type SlidingWindowLimiter struct {
	name   string
	limit  int
	window time.Duration
	now    func() time.Time

	mu     sync.Mutex
	stamps []time.Time
}

// NewSlidingWindowLimiter creates a limiter for limit calls per window.
func NewSlidingWindowLimiter(name string, limit int, window time.Duration) *SlidingWindowLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &SlidingWindowLimiter{
		name:   name,
		limit:  limit,
		window: window,
		now:    time.Now,
		stamps: make([]time.Time, 0, limit),
	}
}

// Delay returns how long a call issued now would have to wait.
func (l *SlidingWindowLimiter) Delay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.delayLocked(l.now())
}

// Wait blocks until a slot is free in the rolling window, then claims it.
// Waiting happens outside the lock so other callers are never blocked by a sleeper.
func (l *SlidingWindowLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	for {
		l.mu.Lock()
		now := l.now()
		wait := l.delayLocked(now)
		if wait <= 0 {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			if waited := time.Since(start); waited > time.Millisecond {
				metrics.RateLimiterWait.WithLabelValues(l.name).Observe(waited.Seconds())
			}
			return nil
		}
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *SlidingWindowLimiter) delayLocked(now time.Time) time.Duration {
	cut := 0
	for cut < len(l.stamps) && now.Sub(l.stamps[cut]) >= l.window {
		cut++
	}
	if cut > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[cut:]...)
	}
	if len(l.stamps) < l.limit {
		return 0
	}
	return l.window - now.Sub(l.stamps[0])
}
