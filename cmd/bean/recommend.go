package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/bean-scene/internal/cli"
	"github.com/Veraticus/bean-scene/internal/common"
	"github.com/Veraticus/bean-scene/internal/model"
	"github.com/Veraticus/bean-scene/internal/recommend"
)

func recommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Find the best coffee for your taste",
		Long: `Score the catalog against your preferences and show the best match.

Without flags the four quiz questions are asked interactively.`,
		Example: `  bean recommend
  bean recommend --drink "with milk" --brew espresso --roast 5 --flavors chocolate,nutty
  bean recommend --drink "straight up" --brew filter --roast 1 --another ethiopia-yirgacheffe`,
		RunE: runRecommend,
	}

	cmd.Flags().String("drink", "", "drink style (straight up, with milk)")
	cmd.Flags().String("brew", "", "brew method (espresso, filter)")
	cmd.Flags().Int("roast", 0, "roast level from 1 (light) to 6 (extra dark)")
	cmd.Flags().String("flavors", "", "up to three comma separated flavor notes")
	cmd.Flags().String("another", "", "show the next best match after this coffee ID")

	return cmd
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	prefs, err := preferencesFromFlags(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if prefs == nil {
		handler := cli.NewInterruptHandler(cmd.OutOrStdout(), "Quiz canceled")
		ctx = handler.HandleInterrupts(ctx)

		answers, err := cli.NewQuiz(cli.NewLineReader(os.Stdin), cmd.OutOrStdout()).Run(ctx)
		if err != nil {
			if handler.WasInterrupted() {
				return nil
			}
			return err
		}
		prefs = &answers
	}

	another, _ := cmd.Flags().GetString("another")
	var best model.ScoredCandidate
	if another != "" {
		best, err = a.recommender().Another(ctx, *prefs, another)
	} else {
		best, err = a.recommender().Recommend(ctx, *prefs)
	}
	switch {
	case errors.Is(err, recommend.ErrNoMatch):
		return common.NewUserError(cli.FormatWarning("No other coffee matches those answers."), err)
	case err != nil:
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRecommendation(best))
	return err
}

// preferencesFromFlags returns nil when no preference flag is set.
func preferencesFromFlags(cmd *cobra.Command) (*model.Preferences, error) {
	flags := cmd.Flags()
	if !flags.Changed("drink") && !flags.Changed("brew") && !flags.Changed("roast") && !flags.Changed("flavors") {
		return nil, nil
	}

	drink, _ := flags.GetString("drink")
	brew, _ := flags.GetString("brew")
	roast, _ := flags.GetInt("roast")
	flavorList, _ := flags.GetString("flavors")

	style, err := model.ParseDrinkStyle(drink)
	if err != nil {
		return nil, err
	}
	method, err := model.ParseBrewMethod(brew)
	if err != nil {
		return nil, err
	}
	flavors, err := cli.ParseFlavors(flavorList)
	if err != nil {
		return nil, err
	}

	prefs := &model.Preferences{
		DrinkStyle: style,
		BrewMethod: method,
		RoastLevel: model.RoastLevel(roast),
		Flavors:    flavors,
	}
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	return prefs, nil
}
