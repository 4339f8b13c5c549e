package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/bean-scene/internal/cli"
	"github.com/Veraticus/bean-scene/internal/config"
	"github.com/Veraticus/bean-scene/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on startup; use --status to inspect
the schema without changing it.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()

	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	slog.Info("Starting database migration",
		"database", settings.DatabasePath,
		"status_only", status)

	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()

	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("Schema version %d of %d", current, storage.ExpectedSchemaVersion)
		if current < storage.ExpectedSchemaVersion {
			_, err = fmt.Fprintln(out, cli.FormatWarning(msg+" (run bean migrate)"))
		} else {
			_, err = fmt.Fprintln(out, cli.FormatSuccess(msg))
		}
		return err
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	_, err = fmt.Fprintln(out, cli.FormatSuccess("Database migrations completed"))
	return err
}
