package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/bean-scene/internal/api"
	"github.com/Veraticus/bean-scene/internal/catalog"
	"github.com/Veraticus/bean-scene/internal/ratelimit"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recommendation and chat API",
		Long: `Start the HTTP API:

  POST /api/recommend       score the catalog for quiz answers
  POST /api/chat            ask the catalog assistant
  GET  /api/coffees         list the active catalog
  GET  /api/usage/subjects  most asked-about subjects
  GET  /metrics             Prometheus metrics`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("watch-catalog", "", "re-import this export file whenever it changes")
	cmd.Flags().Bool("watch-verified", true, "mark re-imported coffees as verified")

	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("catalog.watch", cmd.Flags().Lookup("watch-catalog"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	client, err := a.completionClient()
	if err != nil {
		return err
	}
	defer client.Close()

	limiter, err := ratelimit.New(a.settings.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	server := api.NewServer(api.Options{
		Recommender:   a.recommender(),
		Catalog:       a.loader,
		Chat:          client,
		Usage:         a.store,
		Limiter:       limiter,
		Logger:        a.logger,
		ContextTokens: a.settings.ContextTokens,
	})

	httpServer := &http.Server{
		Addr:              a.settings.ServerAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	g, ctx := errgroup.WithContext(ctx)

	if path := a.settings.CatalogWatch; path != "" {
		verified, _ := cmd.Flags().GetBool("watch-verified")
		watcher, err := catalog.NewWatcher(path, a.store, catalog.ImportOptions{Verified: verified}, a.logger)
		if err != nil {
			return err
		}
		a.logger.Info("watching catalog export", "path", path)
		g.Go(func() error { return watcher.Run(ctx) })
	}

	g.Go(func() error {
		a.logger.Info("serving", "addr", httpServer.Addr, "chain", client.ClientType())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down server")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
