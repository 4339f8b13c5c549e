package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/bean-scene/internal/cli"
)

func usageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show what customers ask about most",
		RunE: func(cmd *cobra.Command, _ []string) error {
			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			counts, err := a.store.UsageBySubject(ctx, time.Now().AddDate(0, 0, -days))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Chat subjects, last %d days", days))); err != nil {
				return err
			}
			if len(counts) == 0 {
				_, err = fmt.Fprintln(out, cli.SubtleStyle.Render("No chats recorded yet."))
				return err
			}
			for _, c := range counts {
				if _, err := fmt.Fprintf(out, "  %-20s %s\n", c.Subject, cli.BoldStyle.Render(fmt.Sprint(c.Count))); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("days", 7, "how many days back to count")
	return cmd
}
