package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/bean-scene/internal/catalog"
	"github.com/Veraticus/bean-scene/internal/cli"
	"github.com/Veraticus/bean-scene/internal/model"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the coffee catalog",
	}

	cmd.AddCommand(catalogImportCmd())
	cmd.AddCommand(catalogListCmd())
	cmd.AddCommand(catalogVerifyCmd())

	return cmd
}

func catalogImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <export.json>",
		Short: "Import a product export into the catalog",
		Long: `Load a JSON array of product records and upsert them into the catalog.

Only verified coffees are recommended; pass --verified to mark the
imported rows as reviewed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verified, _ := cmd.Flags().GetBool("verified")
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open export: %w", err)
			}
			defer func() { _ = f.Close() }()

			coffees, err := catalog.ParseExport(f, a.logger)
			if err != nil {
				return err
			}

			n, err := catalog.Import(ctx, a.store, coffees, catalog.ImportOptions{
				Progress: cmd.ErrOrStderr(),
				Verified: verified,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d coffees", n)))
			return err
		},
	}

	cmd.Flags().Bool("verified", false, "mark imported coffees as verified")
	return cmd
}

func catalogListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog coffees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			var coffees []model.Coffee
			if all {
				coffees, err = a.store.ListCoffees(ctx)
			} else {
				// What the recommender sees, bundled fallback included.
				coffees, err = a.loader.Load(ctx)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCoffeeTable(coffees))
			return err
		},
	}

	cmd.Flags().Bool("all", false, "include unverified rows and skip the bundled fallback")
	return cmd
}

func catalogVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <coffee-id>",
		Short: "Mark a coffee as verified so it can be recommended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			revoke, _ := cmd.Flags().GetBool("revoke")
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.store.SetVerified(ctx, args[0], !revoke); err != nil {
				return err
			}

			state := "verified"
			if revoke {
				state = "unverified"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s is now %s", args[0], state)))
			return err
		},
	}

	cmd.Flags().Bool("revoke", false, "clear the verified flag instead")
	return cmd
}
