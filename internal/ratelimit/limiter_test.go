package ratelimit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, window time.Duration, maxRequests int) (*Limiter, *fakeClock) {
	t.Helper()

	l, err := New(Config{Window: window, MaxRequests: maxRequests})
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	l.now = clock.now
	l.random = func() float64 { return 1 }
	return l, clock
}

func TestLimiter_ThirdCallRejected(t *testing.T) {
	l, clock := newTestLimiter(t, 60*time.Second, 2)

	require.NoError(t, l.Check("203.0.113.7"))
	clock.advance(10 * time.Second)
	require.NoError(t, l.Check("203.0.113.7"))
	clock.advance(5 * time.Second)

	err := l.Check("203.0.113.7")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)

	var limitErr *LimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 45*time.Second, limitErr.RetryAfter)
	assert.Greater(t, limitErr.RetryAfterSeconds(), 0)
	assert.LessOrEqual(t, limitErr.RetryAfterSeconds(), 60)
}

func TestLimiter_WindowSlides(t *testing.T) {
	l, clock := newTestLimiter(t, time.Minute, 2)

	require.NoError(t, l.Check("a"))
	clock.advance(30 * time.Second)
	require.NoError(t, l.Check("a"))
	require.Error(t, l.Check("a"))

	// The first stamp leaves the window; one slot frees up.
	clock.advance(30*time.Second + time.Millisecond)
	require.NoError(t, l.Check("a"))
	require.Error(t, l.Check("a"))
}

func TestLimiter_RejectedCallsAreNotRecorded(t *testing.T) {
	l, clock := newTestLimiter(t, time.Minute, 1)

	require.NoError(t, l.Check("a"))
	for range 5 {
		clock.advance(time.Second)
		require.Error(t, l.Check("a"))
	}

	clock.advance(55 * time.Second)
	assert.NoError(t, l.Check("a"))
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, time.Minute, 1)

	require.NoError(t, l.Check("a"))
	require.NoError(t, l.Check("b"))
	assert.Error(t, l.Check("a"))
	assert.Error(t, l.Check("b"))
}

func TestLimiter_Exempt(t *testing.T) {
	l, _ := newTestLimiter(t, time.Minute, 1)

	for _, id := range DefaultExempt {
		for range 10 {
			require.NoError(t, l.Check(id), id)
		}
	}
	assert.Zero(t, l.Clients())

	custom, err := New(Config{Window: time.Minute, MaxRequests: 1, Exempt: []string{"internal"}})
	require.NoError(t, err)
	require.NoError(t, custom.Check("127.0.0.1"))
	assert.Error(t, custom.Check("127.0.0.1"))
}

func TestLimiter_ProbabilisticCleanup(t *testing.T) {
	l, clock := newTestLimiter(t, time.Minute, 5)

	require.NoError(t, l.Check("idle-1"))
	require.NoError(t, l.Check("idle-2"))
	clock.advance(2 * time.Minute)
	require.NoError(t, l.Check("active"))
	assert.Equal(t, 3, l.Clients(), "no sweep while the dice say no")

	l.random = func() float64 { return 0 }
	require.NoError(t, l.Check("active"))
	assert.Equal(t, 1, l.Clients())
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Window: 0, MaxRequests: 1})
	require.Error(t, err)

	_, err = New(Config{Window: time.Second, MaxRequests: 0})
	require.Error(t, err)
}

func TestLimitError_RetryAfterSeconds(t *testing.T) {
	tests := []struct {
		retry time.Duration
		want  int
	}{
		{0, 1},
		{200 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{60 * time.Second, 60},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, (&LimitError{RetryAfter: tt.retry}).RetryAfterSeconds(), tt.retry.String())
	}
}

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter(t, time.Minute, 1)

	handler := l.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("198.51.100.4:5555").Code)

	rejected := call("198.51.100.4:6666")
	assert.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.Equal(t, "60", rejected.Header().Get("Retry-After"))
	assert.Contains(t, rejected.Body.String(), "retry_after_secs")

	assert.Equal(t, http.StatusNoContent, call("127.0.0.1:1234").Code)
	assert.Equal(t, http.StatusNoContent, call("127.0.0.1:1234").Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "::1", ClientIP(req))

	req.RemoteAddr = "not-a-host-port"
	assert.Equal(t, "not-a-host-port", ClientIP(req))
}
