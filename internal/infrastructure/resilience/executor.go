package resilience

import (
	"context"
	"errors"
	"time"

	"whale_analyzer/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Executor runs one vendor's outbound calls through its circuit breaker, rate
// limiter and retry policy. One Executor is built per provider at start-up and
// shared by all requests. Limiter and breaker are optional.
type Executor struct {
	provider string
	limiter  Limiter
	breaker  *CircuitBreaker
	retry    RetryPolicy
	logger   *zap.Logger
}

// NewExecutor wires the resilience primitives of a provider together.
func NewExecutor(provider string, limiter Limiter, breaker *CircuitBreaker, retry RetryPolicy, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		provider: provider,
		limiter:  limiter,
		breaker:  breaker,
		retry:    retry,
		logger:   logger.Named("Executor").With(zap.String("provider", provider)),
	}
}

// Do executes call for endpoint. Every attempt claims a rate-limit slot. The
// breaker sees one outcome per Do, after retries; caller cancellation is not
// counted as a failure.
func (e *Executor) Do(ctx context.Context, endpoint string, call func(ctx context.Context) error) error {
	key := e.provider + ":" + endpoint
	if e.breaker != nil {
		if err := e.breaker.Allow(key); err != nil {
			metrics.ProviderRequests.WithLabelValues(e.provider, endpoint, "short_circuit").Inc()
			e.logger.Debug("Circuit open, skipping call", zap.String("endpoint", endpoint))
			return err
		}
	}

	start := time.Now()
	err := e.retry.Do(ctx, func(ctx context.Context) error {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		return call(ctx)
	}, func(attempt int, delay time.Duration, err error) {
		metrics.ProviderRetries.WithLabelValues(e.provider, endpoint).Inc()
		e.logger.Warn("Transient provider failure, retrying",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	})
	metrics.ProviderRequestDuration.WithLabelValues(e.provider, endpoint).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.ProviderRequests.WithLabelValues(e.provider, endpoint, "success").Inc()
		if e.breaker != nil {
			e.breaker.RecordSuccess(key)
		}
	case ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		metrics.ProviderRequests.WithLabelValues(e.provider, endpoint, "cancelled").Inc()
	default:
		metrics.ProviderRequests.WithLabelValues(e.provider, endpoint, "failure").Inc()
		if e.breaker != nil && e.breaker.RecordFailure(key) {
			metrics.CircuitBreakerOpen.WithLabelValues(key).Inc()
			e.logger.Warn("Circuit breaker opened", zap.String("endpoint", endpoint), zap.Error(err))
		}
	}
	return err
}
