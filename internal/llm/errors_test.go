package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/bean-scene/internal/common"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		want      error
		name      string
		status    int
		retryable bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, want: ErrRateLimited, retryable: true},
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrAuth},
		{name: "forbidden", status: http.StatusForbidden, want: ErrAuth},
		{name: "bad request", status: http.StatusBadRequest, want: ErrAuth},
		{name: "model not found", status: http.StatusNotFound, want: ErrAuth},
		{name: "internal server error", status: http.StatusInternalServerError, want: ErrAuth},
		{name: "bad gateway", status: http.StatusBadGateway, want: ErrTransient, retryable: true},
		{name: "overloaded", status: http.StatusServiceUnavailable, want: ErrTransient, retryable: true},
		{name: "gateway timeout", status: http.StatusGatewayTimeout, want: ErrTransient, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := statusError("openai", tt.status, `{"error":"nope"}`)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.retryable, err.Retryable())
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Contains(t, err.Error(), "openai")
		})
	}
}

func TestProviderErrorRetryable(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{kind: KindTransient, want: true},
		{kind: KindRateLimited, want: true},
		{kind: KindMalformed, want: true},
		{kind: KindAuthOrConfig, want: false},
		{kind: KindUnavailable, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := &ProviderError{Provider: "openai", Kind: tt.kind}
			assert.Equal(t, tt.want, err.Retryable())
		})
	}
}

func TestRateLimitedMatchesRetrySentinel(t *testing.T) {
	err := statusError("gemini", http.StatusTooManyRequests, "")
	assert.ErrorIs(t, err, common.ErrRateLimit)
	assert.NotErrorIs(t, err, ErrTransient)
}

func TestTransportError(t *testing.T) {
	err := transportError(context.Background(), "anthropic", errors.New("connection reset"))
	assert.ErrorIs(t, err, ErrTransient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = transportError(ctx, "anthropic", errors.New("connection reset"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTransient)
}

func TestTruncateBody(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, truncateBody(string(long)), 515)
	assert.Equal(t, "short", truncateBody("short"))
}

func TestUserMessage(t *testing.T) {
	generic := "Sorry, something went wrong. Please try again in a moment."

	tests := []struct {
		err  error
		name string
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "auth failure is not exposed", err: fmt.Errorf("%w: %w", ErrCompletionFailed, statusError("openai", 401, "Incorrect API key sk-123")), want: generic},
		{name: "invalid request", err: fmt.Errorf("%w: empty", ErrInvalidRequest), want: "Please type a question about our coffees."},
		{name: "timeout", err: fmt.Errorf("completion canceled: %w", context.DeadlineExceeded), want: "That took too long. Please try again."},
		{name: "user error passes through", err: common.NewUserError("Slow down a little.", errors.New("x")), want: "Slow down a little."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
