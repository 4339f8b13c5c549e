package ratelimit

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/Veraticus/bean-scene/internal/metrics"
)

// ClientIP identifies the caller by the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects over-limit callers with 429 and a Retry-After header.
func (l *Limiter) Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := l.Check(ClientIP(r))
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			var limitErr *LimitError
			if !errors.As(err, &limitErr) {
				next.ServeHTTP(w, r)
				return
			}

			metrics.RateLimitRejections.Inc()
			logger.Warn("request rate limited",
				"client", limitErr.ClientID,
				"path", r.URL.Path,
				"retry_after", limitErr.RetryAfter)

			seconds := limitErr.RetryAfterSeconds()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			w.WriteHeader(http.StatusTooManyRequests)

			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":            "Too many requests. Please wait a moment and try again.",
				"retry_after_secs": seconds,
			})
		})
	}
}
