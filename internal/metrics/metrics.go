// Package metrics registers the Prometheus collectors for recommendations,
// the completion pipeline and the request rate limiter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendations counts scoring requests by outcome (match, no_match, invalid, error).
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bean_recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	// CompletionCacheHits counts completions served from the cache.
	CompletionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bean_completion_cache_hits_total",
			Help: "Total number of completions served from cache",
		},
	)

	// CompletionCacheMisses counts completions that went upstream.
	CompletionCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bean_completion_cache_misses_total",
			Help: "Total number of completion cache misses",
		},
	)

	// ProviderCalls counts provider attempts by provider and outcome.
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bean_provider_calls_total",
			Help: "Total number of completion provider calls",
		},
		[]string{"provider", "outcome"}, // outcome: success, rate_limited, auth, transient, malformed, unavailable
	)

	// ProviderFallbacks counts hand-offs from one provider to the next in the chain.
	ProviderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bean_provider_fallbacks_total",
			Help: "Total number of fallbacks away from a failing provider",
		},
		[]string{"from"},
	)

	// ProviderCallDuration observes upstream latency per provider.
	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bean_provider_call_duration_seconds",
			Help:    "Duration of completion provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// ProviderBreakerState reports each provider's circuit breaker (0 closed, 1 half-open, 2 open).
	ProviderBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bean_provider_breaker_state",
			Help: "Circuit breaker state per completion provider",
		},
		[]string{"provider"},
	)

	// UsageTrackingFailures counts usage records that could not be written.
	UsageTrackingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bean_usage_tracking_failures_total",
			Help: "Total number of failed usage tracking writes",
		},
	)

	// RateLimitRejections counts requests refused by the sliding-window limiter.
	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bean_rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)
