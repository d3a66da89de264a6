package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "whale_analyzer"

var (
	ProviderRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Outbound provider calls by provider, endpoint and outcome.",
	}, []string{"provider", "endpoint", "outcome"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Latency of outbound provider calls including retries.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"provider", "endpoint"})

	ProviderRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_retries_total",
		Help:      "Retries of transient provider failures.",
	}, []string{"provider", "endpoint"})

	CircuitBreakerOpen = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_open_total",
		Help:      "Times a circuit breaker tripped open.",
	}, []string{"endpoint"})

	RateLimiterWait = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rate_limiter_wait_seconds",
		Help:      "Time spent waiting for a rate-limit slot.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 3, 10),
	}, []string{"limiter"})

	WalletAnalyses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wallet_analysis_total",
		Help:      "Wallet analyses by outcome.",
	}, []string{"outcome"})

	WalletAnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "wallet_analysis_duration_seconds",
		Help:      "End-to-end wallet analysis latency.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 15, 20, 25, 30},
	})

	SummaryFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "summary_fallback_total",
		Help:      "Summaries produced by the offline generator, by reason.",
	}, []string{"reason"})

	DefiAnalyses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "defi_analysis_total",
		Help:      "DeFi position analyses by outcome.",
	}, []string{"outcome"})

	ChainMetadataRefresh = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chain_metadata_refresh_total",
		Help:      "Chain metadata refresh attempts by outcome.",
	}, []string{"outcome"})
)

var registerOnce sync.Once

// MustRegister registers all collectors with the default registry. Safe to call more than once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ProviderRequests,
			ProviderRequestDuration,
			ProviderRetries,
			CircuitBreakerOpen,
			RateLimiterWait,
			WalletAnalyses,
			WalletAnalysisDuration,
			SummaryFallbacks,
			DefiAnalyses,
			ChainMetadataRefresh,
		)
	})
}
