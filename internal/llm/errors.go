package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Veraticus/bean-scene/internal/common"
)

// Provider failure classes. Every *ProviderError matches exactly one.
var (
	// ErrRateLimited is the shared rate-limit sentinel, so the retry helper
	// backs off exponentially on it.
	ErrRateLimited       = common.ErrRateLimit
	ErrAuth              = errors.New("provider authentication or configuration error")
	ErrTransient         = errors.New("transient provider error")
	ErrMalformedResponse = errors.New("malformed provider response")
	ErrUnavailable       = errors.New("provider unavailable")
)

var (
	// ErrCompletionFailed is returned when every provider in the chain failed.
	ErrCompletionFailed = errors.New("completion failed")
	// ErrInvalidRequest marks requests rejected before any provider is called.
	ErrInvalidRequest = errors.New("invalid completion request")
	// ErrNoProviders is returned when a chain is built with no clients.
	ErrNoProviders = errors.New("no completion providers configured")
)

// ErrorKind classifies provider failures for the retry and fallback policy.
type ErrorKind int

// Error kinds.
const (
	KindTransient ErrorKind = iota
	KindRateLimited
	KindAuthOrConfig
	KindMalformed
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate_limited"
	case KindAuthOrConfig:
		return "auth"
	case KindMalformed:
		return "malformed"
	case KindUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ProviderError describes a failed provider call.
type ProviderError struct {
	Err        error
	Provider   string
	Kind       ErrorKind
	StatusCode int
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s error", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *ProviderError) Is(target error) bool {
	switch e.Kind {
	case KindTransient:
		return target == ErrTransient
	case KindRateLimited:
		return target == ErrRateLimited
	case KindAuthOrConfig:
		return target == ErrAuth
	case KindMalformed:
		return target == ErrMalformedResponse
	case KindUnavailable:
		return target == ErrUnavailable
	}
	return false
}

// Retryable reports whether retrying the same provider can help. Auth,
// config and open-breaker failures go straight to the next provider.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case KindTransient, KindRateLimited, KindMalformed:
		return true
	default:
		return false
	}
}

// statusError classifies a non-2xx response. 429 backs off; 5xx gateway
// failures are transient; 500 and every other 4xx mean the request or the
// credential is wrong and will not improve on retry.
func statusError(provider string, status int, body string) *ProviderError {
	kind := KindAuthOrConfig
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status == http.StatusInternalServerError:
		kind = KindAuthOrConfig
	case status >= 500:
		kind = KindTransient
	}

	var err error
	if body != "" {
		err = errors.New(truncateBody(body))
	}
	return &ProviderError{Provider: provider, Kind: kind, StatusCode: status, Err: err}
}

// transportError wraps a failure that happened before a status was received.
// Context errors pass through untouched so callers stop instead of falling back.
func transportError(ctx context.Context, provider string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &ProviderError{Provider: provider, Kind: KindTransient, Err: err}
}

func malformed(provider, format string, args ...any) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindMalformed, Err: fmt.Errorf(format, args...)}
}

func truncateBody(body string) string {
	const limit = 512
	if len(body) <= limit {
		return body
	}
	return body[:limit] + "..."
}

// UserMessage converts a pipeline error into text safe to show an end user.
// Only conditions the user can act on are described; configuration and
// provider internals collapse to a generic retry prompt.
func UserMessage(err error) string {
	var userErr *common.UserError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &userErr):
		return userErr.UserMessage
	case errors.Is(err, ErrInvalidRequest):
		return "Please type a question about our coffees."
	case errors.Is(err, context.DeadlineExceeded):
		return "That took too long. Please try again."
	default:
		return "Sorry, something went wrong. Please try again in a moment."
	}
}
