// Package ratelimit implements a per-caller sliding-window request limiter.
package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// ErrRateLimited is matched by every *LimitError.
var ErrRateLimited = errors.New("rate limit exceeded")

// DefaultExempt lists loopback identities that are never limited.
var DefaultExempt = []string{"127.0.0.1", "::1", "localhost"}

const defaultCleanupProbability = 0.01

// LimitError reports a rejected call and how long the caller must wait.
type LimitError struct {
	ClientID   string
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry in %ds", e.ClientID, e.RetryAfterSeconds())
}

// Is makes errors.Is(err, ErrRateLimited) succeed.
func (e *LimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below 1.
func (e *LimitError) RetryAfterSeconds() int {
	return max(int(math.Ceil(e.RetryAfter.Seconds())), 1)
}

// Config controls a Limiter.
type Config struct {
	Window      time.Duration
	MaxRequests int
	// Exempt identities bypass the limiter. Nil means DefaultExempt.
	Exempt []string
	// CleanupProbability is the chance per call of sweeping idle clients.
	CleanupProbability float64
}

// Limiter counts requests per client over a sliding window.
type Limiter struct {
	requests map[string][]time.Time
	exempt   map[string]struct{}
	now      func() time.Time
	random   func() float64
	window   time.Duration
	max      int
	sweepP   float64
	mu       sync.Mutex
}

// New creates a limiter. Window and MaxRequests must be positive.
func New(cfg Config) (*Limiter, error) {
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %s", cfg.Window)
	}
	if cfg.MaxRequests <= 0 {
		return nil, fmt.Errorf("rate limit max requests must be positive, got %d", cfg.MaxRequests)
	}

	exemptList := cfg.Exempt
	if exemptList == nil {
		exemptList = DefaultExempt
	}
	exempt := make(map[string]struct{}, len(exemptList))
	for _, id := range exemptList {
		exempt[id] = struct{}{}
	}

	sweepP := cfg.CleanupProbability
	if sweepP <= 0 {
		sweepP = defaultCleanupProbability
	}

	return &Limiter{
		requests: make(map[string][]time.Time),
		exempt:   exempt,
		now:      time.Now,
		random:   rand.Float64,
		window:   cfg.Window,
		max:      cfg.MaxRequests,
		sweepP:   sweepP,
	}, nil
}

// Check records a request from clientID, or returns a *LimitError when the
// client already made MaxRequests calls within the window. Rejected calls
// are not recorded.
func (l *Limiter) Check(clientID string) error {
	if _, ok := l.exempt[clientID]; ok {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.random() < l.sweepP {
		l.sweep(now)
	}

	recent := prune(l.requests[clientID], now.Add(-l.window))
	if len(recent) >= l.max {
		l.requests[clientID] = recent
		return &LimitError{
			ClientID:   clientID,
			RetryAfter: recent[0].Add(l.window).Sub(now),
		}
	}

	l.requests[clientID] = append(recent, now)
	return nil
}

// Clients returns how many identities are currently tracked.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.window)
	for id, stamps := range l.requests {
		if recent := prune(stamps, cutoff); len(recent) == 0 {
			delete(l.requests, id)
		} else {
			l.requests[id] = recent
		}
	}
}

// prune drops timestamps at or before cutoff. Stamps are in call order.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	return stamps[i:]
}
