package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/bean-scene/internal/metrics"
	"github.com/Veraticus/bean-scene/internal/model"
)

// CatalogLoader supplies the candidate coffees.
type CatalogLoader interface {
	Load(ctx context.Context) ([]model.Coffee, error)
}

// Recommender picks coffees for a quiz session.
type Recommender struct {
	catalog CatalogLoader
	logger  *slog.Logger
}

// NewRecommender creates a recommender over the given catalog.
func NewRecommender(catalog CatalogLoader, logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommender{catalog: catalog, logger: logger}
}

// Recommend returns the best match for prefs.
func (r *Recommender) Recommend(ctx context.Context, prefs model.Preferences) (model.ScoredCandidate, error) {
	return r.pick(ctx, prefs, "")
}

// Another re-ranks the catalog without the currently shown coffee and returns
// the new best match.
func (r *Recommender) Another(ctx context.Context, prefs model.Preferences, currentID string) (model.ScoredCandidate, error) {
	if currentID == "" {
		return model.ScoredCandidate{}, fmt.Errorf("%w: current coffee id is required", model.ErrInvalidPreferences)
	}
	return r.pick(ctx, prefs, currentID)
}

func (r *Recommender) pick(ctx context.Context, prefs model.Preferences, exclude string) (model.ScoredCandidate, error) {
	coffees, err := r.catalog.Load(ctx)
	if err != nil {
		return model.ScoredCandidate{}, fmt.Errorf("failed to load catalog: %w", err)
	}

	var excluded []string
	if exclude != "" {
		excluded = append(excluded, exclude)
	}

	best, err := Best(coffees, prefs, excluded...)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrNoMatch) {
			outcome = "no_match"
		} else if errors.Is(err, model.ErrInvalidPreferences) {
			outcome = "invalid"
		}
		metrics.Recommendations.WithLabelValues(outcome).Inc()
		return model.ScoredCandidate{}, err
	}

	metrics.Recommendations.WithLabelValues("match").Inc()
	r.logger.Info("coffee recommended",
		"coffee", best.Coffee.Name,
		"score", best.Score,
		"excluded", exclude,
		"candidates", len(coffees))

	return best, nil
}
