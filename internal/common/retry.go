package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrRateLimit indicates that the API rate limit has been exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	// Sleep replaces the wait between attempts; tests use it to skip real delays.
	Sleep func(ctx context.Context, d time.Duration) error
	// MaxAttempts counts the first call.
	MaxAttempts int
	// InitialDelay is the first wait after a rate limit; each further rate
	// limit multiplies it by Multiplier, capped at MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// TransientDelay is the fixed wait after any other retryable failure.
	TransientDelay time.Duration
	Multiplier     float64
}

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = time.Second
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	if o.TransientDelay <= 0 {
		o.TransientDelay = 500 * time.Millisecond
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 2.0
	}
	if o.Sleep == nil {
		o.Sleep = sleepContext
	}
	return o
}

// WithRetry executes an operation with configurable retry behavior.
// Errors that IsRetryable rejects are returned immediately.
func WithRetry(ctx context.Context, operation func() error, opts RetryOptions) error {
	opts = opts.withDefaults()
	backoff := opts.InitialDelay

	var err error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if err = operation(); err == nil {
			return nil
		}

		if !IsRetryable(err) {
			return err
		}

		if attempt == opts.MaxAttempts {
			break
		}

		delay := opts.TransientDelay
		if errors.Is(err, ErrRateLimit) {
			delay = backoff
			backoff = min(time.Duration(float64(backoff)*opts.Multiplier), opts.MaxDelay)
		}

		slog.Warn("Operation failed, retrying",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", delay,
			"error", err)

		if sleepErr := opts.Sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, opts.MaxAttempts, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
