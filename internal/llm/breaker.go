package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Veraticus/bean-scene/internal/metrics"
)

// BreakerSettings tunes the per-provider circuit breaker.
type BreakerSettings struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

func (s BreakerSettings) withDefaults() BreakerSettings {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	return s
}

// breakerClient stops calling a provider that keeps failing. While open,
// calls fail fast with ErrUnavailable so the chain moves on.
type breakerClient struct {
	next Client
	cb   *gobreaker.CircuitBreaker[Result]
}

// WithBreaker wraps client in a circuit breaker. Rate limits and caller
// cancellation do not count as failures.
func WithBreaker(client Client, settings BreakerSettings, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	settings = settings.withDefaults()
	name := client.ClientType()

	metrics.ProviderBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[Result](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrRateLimited) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, ErrInvalidRequest)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("provider circuit breaker changed state",
				"provider", name,
				"from", from.String(),
				"to", to.String())
			metrics.ProviderBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &breakerClient{next: client, cb: cb}
}

func (b *breakerClient) ClientType() string { return b.next.ClientType() }

func (b *breakerClient) Complete(ctx context.Context, req Request) (Result, error) {
	result, err := b.cb.Execute(func() (Result, error) {
		return b.next.Complete(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Result{}, &ProviderError{Provider: b.ClientType(), Kind: KindUnavailable, Err: err}
	}
	return result, err
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
