package grounding

import (
	"context"
	"log/slog"

	"github.com/Veraticus/bean-scene/internal/catalog"
	"github.com/Veraticus/bean-scene/internal/model"
)

// CatalogLoader supplies the products to render.
type CatalogLoader interface {
	Load(ctx context.Context) ([]model.Coffee, error)
}

// Builder produces grounding context from a live catalog.
type Builder struct {
	catalog CatalogLoader
	logger  *slog.Logger
}

// NewBuilder creates a builder. A nil loader renders the bundled catalog.
func NewBuilder(loader CatalogLoader, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{catalog: loader, logger: logger}
}

// Context renders the catalog and fits it into maxTokens. A non-positive
// budget skips optimization. Load failures fall back to the bundled catalog.
func (b *Builder) Context(ctx context.Context, maxTokens int) (string, error) {
	products := b.products(ctx)

	text := BuildContext(products)
	if maxTokens <= 0 {
		return text, nil
	}

	optimized := OptimizeContext(text, maxTokens)
	if len(optimized) < len(text) {
		b.logger.Debug("grounding context trimmed",
			"products", len(products),
			"max_tokens", maxTokens,
			"from_chars", len(text),
			"to_chars", len(optimized))
	}
	return optimized, nil
}

func (b *Builder) products(ctx context.Context) []model.Coffee {
	if b.catalog == nil {
		return catalog.Bundled()
	}

	products, err := b.catalog.Load(ctx)
	if err != nil {
		b.logger.Warn("failed to load catalog for grounding, using bundled catalog", "error", err)
		return catalog.Bundled()
	}
	if len(products) == 0 {
		return catalog.Bundled()
	}
	return products
}
