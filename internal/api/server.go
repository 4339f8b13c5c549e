// Package api exposes the recommender and the chat pipeline over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Veraticus/bean-scene/internal/llm"
	"github.com/Veraticus/bean-scene/internal/model"
	"github.com/Veraticus/bean-scene/internal/ratelimit"
	"github.com/Veraticus/bean-scene/internal/storage"
)

// Recommender picks coffees for a set of quiz answers.
type Recommender interface {
	Recommend(ctx context.Context, prefs model.Preferences) (model.ScoredCandidate, error)
	Another(ctx context.Context, prefs model.Preferences, currentID string) (model.ScoredCandidate, error)
}

// CatalogLoader supplies the coffees shown by GET /api/coffees.
type CatalogLoader interface {
	Load(ctx context.Context) ([]model.Coffee, error)
}

// UsageReporter summarizes tracked chat subjects.
type UsageReporter interface {
	UsageBySubject(ctx context.Context, since time.Time) ([]storage.SubjectCount, error)
}

// Options wires the server's collaborators. Usage and Limiter are optional.
type Options struct {
	Recommender Recommender
	Catalog     CatalogLoader
	Chat        llm.Client
	Usage       UsageReporter
	Limiter     *ratelimit.Limiter
	Logger      *slog.Logger
	// ContextTokens bounds the grounding context injected into chat requests.
	ContextTokens int
}

// Server serves the JSON API.
type Server struct {
	recommender   Recommender
	catalog       CatalogLoader
	chat          llm.Client
	usage         UsageReporter
	limiter       *ratelimit.Limiter
	logger        *slog.Logger
	now           func() time.Time
	contextTokens int
}

// NewServer creates a server from opts.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		recommender:   opts.Recommender,
		catalog:       opts.Catalog,
		chat:          opts.Chat,
		usage:         opts.Usage,
		limiter:       opts.Limiter,
		logger:        logger,
		now:           time.Now,
		contextTokens: opts.ContextTokens,
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/coffees", s.handleCoffees)
		if s.usage != nil {
			r.Get("/usage/subjects", s.handleUsageSubjects)
		}

		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.Middleware(s.logger))
			}
			r.Post("/recommend", s.handleRecommend)
			r.Post("/chat", s.handleChat)
		})
	})

	return r
}
