package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/bean-scene/internal/catalog"
	"github.com/Veraticus/bean-scene/internal/config"
	"github.com/Veraticus/bean-scene/internal/grounding"
	"github.com/Veraticus/bean-scene/internal/llm"
	"github.com/Veraticus/bean-scene/internal/recommend"
	"github.com/Veraticus/bean-scene/internal/storage"
)

// app holds the long-lived services shared by the commands.
type app struct {
	settings *config.Settings
	store    *storage.SQLiteStorage
	loader   *catalog.Loader
	logger   *slog.Logger
}

// newApp loads settings, opens the database and migrates it.
func newApp(ctx context.Context) (*app, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger := slog.Default()
	return &app{
		settings: settings,
		store:    store,
		loader:   catalog.NewLoader(store, logger),
		logger:   logger,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) recommender() *recommend.Recommender {
	return recommend.NewRecommender(a.loader, a.logger)
}

// completionClient builds the provider chain with the local rules last.
// The caller must Close it to flush pending usage records.
func (a *app) completionClient() (*llm.Resilient, error) {
	chain, err := llm.BuildChain(a.settings.Providers, llm.NewLocalClient(a.loader), a.settings.Breaker, a.logger)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewResilient(chain, llm.ResilientConfig{
		Grounding:          grounding.NewBuilder(a.loader, a.logger),
		Usage:              a.store,
		Retry:              a.settings.Retry,
		CacheTTL:           a.settings.CacheTTL,
		CacheSweepInterval: a.settings.CacheTTL,
		RateLimit:          a.settings.ProviderRateLimit,
	}, a.logger)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("completion chain ready", "chain", client.ClientType())
	return client, nil
}
