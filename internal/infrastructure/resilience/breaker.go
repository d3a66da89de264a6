package resilience

import (
	"fmt"
	"sync"
	"time"

	"whale_analyzer/internal/domain/entity"
)

type endpointState struct {
	failures int
	open     bool
	openedAt time.Time
}

// CircuitBreaker counts consecutive failures per endpoint and, once threshold is
// reached, rejects calls to that endpoint until cooldown has elapsed.
type CircuitBreaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu        sync.Mutex
	endpoints map[string]*endpointState
}

// NewCircuitBreaker creates a breaker opening after threshold consecutive failures.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 1
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
		endpoints: make(map[string]*endpointState),
	}
}

// Allow returns an error wrapping entity.ErrCircuitOpen while endpoint is open.
// An endpoint whose cooldown has elapsed is closed again with its counter reset.
func (b *CircuitBreaker) Allow(endpoint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.endpoints[endpoint]
	if !ok || !st.open {
		return nil
	}
	elapsed := b.now().Sub(st.openedAt)
	if elapsed >= b.cooldown {
		delete(b.endpoints, endpoint)
		return nil
	}
	return fmt.Errorf("%w: %s, retry in %s", entity.ErrCircuitOpen, endpoint, (b.cooldown - elapsed).Round(time.Second))
}

// RecordSuccess resets endpoint.
func (b *CircuitBreaker) RecordSuccess(endpoint string) {
	b.mu.Lock()
	delete(b.endpoints, endpoint)
	b.mu.Unlock()
}

// RecordFailure counts a failure and reports whether it tripped the breaker open.
func (b *CircuitBreaker) RecordFailure(endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.endpoints[endpoint]
	if !ok {
		st = &endpointState{}
		b.endpoints[endpoint] = st
	}
	st.failures++
	if !st.open && st.failures >= b.threshold {
		st.open = true
		st.openedAt = b.now()
		return true
	}
	return false
}

// IsOpen reports whether endpoint currently rejects calls.
func (b *CircuitBreaker) IsOpen(endpoint string) bool {
	return b.Allow(endpoint) != nil
}
