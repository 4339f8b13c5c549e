package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/time/rate"

	"github.com/Veraticus/bean-scene/internal/common"
	"github.com/Veraticus/bean-scene/internal/metrics"
)

// ContextProvider renders grounding text within a token budget.
type ContextProvider interface {
	Context(ctx context.Context, maxTokens int) (string, error)
}

// ResilientConfig configures the composed client.
type ResilientConfig struct {
	// Grounding, when set, is prepended as a system message to requests that
	// ask for context tokens.
	Grounding ContextProvider
	// Usage, when set, receives a record after every upstream success.
	Usage UsageRecorder
	Retry common.RetryOptions
	// CacheTTL is how long successful completions are reused.
	CacheTTL time.Duration
	// CacheSweepInterval controls the background sweep; 0 disables it.
	CacheSweepInterval time.Duration
	// RateLimit caps calls per minute to each remote provider; 0 is unlimited.
	RateLimit       int
	TrackingTimeout time.Duration
}

// Resilient walks an ordered provider chain behind a cache. Each provider is
// retried according to the retry policy; a provider that fails for good
// hands the request to the next one. The chain is fixed at construction.
type Resilient struct {
	grounding ContextProvider
	cache     *completionCache
	tracker   *usageTracker
	logger    *slog.Logger
	chain     []Client
	throttles []*rate.Limiter
	retry     common.RetryOptions
	cacheTTL  time.Duration
}

// NewResilient composes chain into a single Client.
func NewResilient(chain []Client, cfg ResilientConfig, logger *slog.Logger) (*Resilient, error) {
	if len(chain) == 0 {
		return nil, ErrNoProviders
	}
	if logger == nil {
		logger = slog.Default()
	}

	throttles := make([]*rate.Limiter, len(chain))
	if cfg.RateLimit > 0 {
		for i, client := range chain {
			if client.ClientType() == "local" {
				continue
			}
			throttles[i] = rate.NewLimiter(rate.Limit(float64(cfg.RateLimit)/60), cfg.RateLimit)
		}
	}

	r := &Resilient{
		grounding: cfg.Grounding,
		cache:     newCompletionCache(cfg.CacheTTL, cfg.CacheSweepInterval),
		logger:    logger,
		chain:     append([]Client(nil), chain...),
		throttles: throttles,
		retry:     cfg.Retry,
		cacheTTL:  cfg.CacheTTL,
	}
	if cfg.Usage != nil {
		r.tracker = newUsageTracker(cfg.Usage, cfg.TrackingTimeout, logger)
	}
	return r, nil
}

// ClientType lists the chain, for example "resilient(openai>gemini>local)".
func (r *Resilient) ClientType() string {
	names := make([]string, len(r.chain))
	for i, c := range r.chain {
		names[i] = c.ClientType()
	}
	return "resilient(" + strings.Join(names, ">") + ")"
}

// Complete returns a cached completion when one is live, otherwise calls the
// chain. Concurrent identical requests share one upstream call.
func (r *Resilient) Complete(ctx context.Context, req Request) (Result, error) {
	if _, ok := LastUserMessage(req.Messages); !ok {
		return Result{}, fmt.Errorf("%w: conversation has no user message", ErrInvalidRequest)
	}

	key := DeriveKey(req.Messages, req.Model, req.PromptID)

	if cached, ok := r.cache.get(key); ok {
		metrics.CompletionCacheHits.Inc()
		r.logger.Debug("completion cache hit", "key", key, "model", cached.Model)
		cached.Cached = true
		return cached, nil
	}
	metrics.CompletionCacheMisses.Inc()

	result, shared, err := r.cache.deduplicate(key, func() (Result, error) {
		return r.fill(ctx, key, req)
	})
	if shared {
		r.logger.Debug("joined in-flight completion", "key", key)
	}
	return result, err
}

// fill runs inside the dedup flight. A flight that finished between the
// caller's cache miss and joining may already have stored the result.
func (r *Resilient) fill(ctx context.Context, key string, req Request) (Result, error) {
	if cached, ok := r.cache.get(key); ok {
		r.logger.Debug("completion cached by earlier flight", "key", key)
		cached.Cached = true
		return cached, nil
	}
	return r.produce(ctx, key, req)
}

func (r *Resilient) produce(ctx context.Context, key string, req Request) (Result, error) {
	prepared := r.prepare(ctx, req)

	var errs *multierror.Error
	for i, client := range r.chain {
		attempt := prepared
		if i > 0 {
			// The requested model belongs to the primary provider.
			attempt.Model = ""
		}

		result, err := r.call(ctx, i, client, attempt)
		if err == nil {
			r.cache.set(key, result, r.cacheTTL)
			if r.tracker != nil {
				r.tracker.track(req.Messages, result)
			}
			r.logger.Info("completion succeeded",
				"provider", result.Provider,
				"model", result.Model,
				"duration", result.Duration,
				"fallbacks", i)
			return result, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("completion canceled: %w", ctxErr)
		}
		if errors.Is(err, ErrInvalidRequest) {
			return Result{}, err
		}

		errs = multierror.Append(errs, err)
		if i < len(r.chain)-1 {
			metrics.ProviderFallbacks.WithLabelValues(client.ClientType()).Inc()
			r.logger.Warn("provider failed, falling back",
				"from", client.ClientType(),
				"to", r.chain[i+1].ClientType(),
				"error", err)
		}
	}

	r.logger.Error("all completion providers failed", "providers", len(r.chain), "error", errs)
	return Result{}, fmt.Errorf("%w: %w", ErrCompletionFailed, errs.ErrorOrNil())
}

// prepare injects grounding context. A grounding failure is logged and the
// request proceeds without it.
func (r *Resilient) prepare(ctx context.Context, req Request) Request {
	if r.grounding == nil || req.ContextTokens <= 0 {
		return req
	}

	text, err := r.grounding.Context(ctx, req.ContextTokens)
	if err != nil {
		r.logger.Warn("failed to build grounding context", "error", err)
		return req
	}
	if text == "" {
		return req
	}

	messages := make([]Message, 0, len(req.Messages)+1)
	messages = append(messages, Message{Role: RoleSystem, Content: text})
	messages = append(messages, req.Messages...)
	req.Messages = messages
	return req
}

// call runs one provider under the retry policy.
func (r *Resilient) call(ctx context.Context, idx int, client Client, req Request) (Result, error) {
	name := client.ClientType()

	var result Result
	err := common.WithRetry(ctx, func() error {
		if throttle := r.throttles[idx]; throttle != nil {
			if err := throttle.Wait(ctx); err != nil {
				return &common.RetryableError{Err: fmt.Errorf("%s throttle: %w", name, err), Retryable: false}
			}
		}

		start := time.Now()
		res, err := client.Complete(ctx, req)
		metrics.ProviderCallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if err != nil {
			var provErr *ProviderError
			if errors.As(err, &provErr) {
				metrics.ProviderCalls.WithLabelValues(name, provErr.Kind.String()).Inc()
				return &common.RetryableError{Err: err, Retryable: provErr.Retryable()}
			}
			metrics.ProviderCalls.WithLabelValues(name, "error").Inc()
			return &common.RetryableError{Err: err, Retryable: false}
		}

		if strings.TrimSpace(res.Completion) == "" {
			metrics.ProviderCalls.WithLabelValues(name, KindMalformed.String()).Inc()
			return &common.RetryableError{Err: malformed(name, "empty completion"), Retryable: true}
		}

		metrics.ProviderCalls.WithLabelValues(name, "success").Inc()
		if res.Duration == 0 {
			res.Duration = time.Since(start)
		}
		result = res
		return nil
	}, r.retry)

	return result, err
}

// Close stops the cache sweep and waits for pending usage records.
func (r *Resilient) Close() {
	r.cache.Close()
	if r.tracker != nil {
		r.tracker.wait()
	}
}
