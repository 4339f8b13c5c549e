package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func TestWithRetry(t *testing.T) {
	errTransient := &RetryableError{Err: errors.New("503"), Retryable: true}
	errFatal := &RetryableError{Err: errors.New("401"), Retryable: false}
	errLimited := fmt.Errorf("provider: %w", ErrRateLimit)

	tests := []struct {
		failures    []error
		name        string
		wantDelays  []time.Duration
		wantCalls   int
		wantErr     bool
		wantErrIs   error
		maxAttempts int
	}{
		{
			name:       "succeeds first try",
			wantCalls:  1,
			wantDelays: nil,
		},
		{
			name:       "transient failures use fixed delay",
			failures:   []error{errTransient, errTransient},
			wantCalls:  3,
			wantDelays: []time.Duration{500 * time.Millisecond, 500 * time.Millisecond},
		},
		{
			name:        "rate limits back off exponentially",
			failures:    []error{errLimited, errLimited, errLimited},
			maxAttempts: 4,
			wantCalls:   4,
			wantDelays:  []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
		},
		{
			name:       "non-retryable error returns immediately",
			failures:   []error{errFatal},
			wantCalls:  1,
			wantErr:    true,
			wantDelays: nil,
		},
		{
			name:       "exhaustion wraps the last error",
			failures:   []error{errTransient, errTransient, errLimited},
			wantCalls:  3,
			wantErr:    true,
			wantErrIs:  ErrRateLimit,
			wantDelays: []time.Duration{500 * time.Millisecond, 500 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &sleepRecorder{}
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			}, RetryOptions{MaxAttempts: tt.maxAttempts, Sleep: rec.sleep})

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantDelays, rec.delays)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, ErrMaxRetries)
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
		})
	}
}

func TestWithRetry_BackoffCapped(t *testing.T) {
	rec := &sleepRecorder{}
	_ = WithRetry(context.Background(), func() error {
		return ErrRateLimit
	}, RetryOptions{
		MaxAttempts:  5,
		InitialDelay: 10 * time.Second,
		MaxDelay:     15 * time.Second,
		Sleep:        rec.sleep,
	})

	assert.Equal(t, []time.Duration{10 * time.Second, 15 * time.Second, 15 * time.Second, 15 * time.Second}, rec.delays)
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		return ErrRateLimit
	}, RetryOptions{InitialDelay: time.Hour})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: ErrRateLimit, Retryable: false}))
}

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("could not save", inner)

	assert.Equal(t, "could not save: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "just a message", NewUserError("just a message", nil).Error())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", level.String())

	_, err = ParseLevel("chatty")
	require.ErrorIs(t, err, ErrInvalidConfig)
}
