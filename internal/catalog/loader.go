package catalog

import (
	"context"
	"log/slog"

	"github.com/Veraticus/bean-scene/internal/model"
)

// Source reads persisted catalog rows. Only verified coffees are returned.
type Source interface {
	ListVerifiedCoffees(ctx context.Context) ([]model.Coffee, error)
}

// Loader reads the catalog from a Source and falls back to the bundled list
// when the source is missing, empty, or failing.
type Loader struct {
	source Source
	logger *slog.Logger
}

// NewLoader creates a loader. A nil source always yields the bundled catalog.
func NewLoader(source Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, logger: logger}
}

// Load returns the current catalog. It never returns an error: storage
// failures degrade to the bundled list.
func (l *Loader) Load(ctx context.Context) ([]model.Coffee, error) {
	if l.source == nil {
		return Bundled(), nil
	}

	coffees, err := l.source.ListVerifiedCoffees(ctx)
	if err != nil {
		l.logger.Warn("catalog source failed, using bundled catalog", "error", err)
		return Bundled(), nil
	}
	if len(coffees) == 0 {
		l.logger.Debug("catalog source is empty, using bundled catalog")
		return Bundled(), nil
	}

	return coffees, nil
}
