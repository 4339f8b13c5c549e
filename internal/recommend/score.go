// Package recommend ranks catalog coffees against quiz preferences.
//
// The score is a hand-tuned weighted sum of four independent factors:
// roast proximity (0-30), flavor overlap (5 per shared note), drink-style
// compatibility (0 or 5) and a curation bonus of 10 minus the coffee's priority.
package recommend

import (
	"errors"
	"fmt"

	"github.com/Veraticus/bean-scene/internal/model"
)

// ErrNoMatch means no candidate was left to recommend.
var ErrNoMatch = errors.New("no matching coffee")

const (
	roastWeight     = 30
	roastDecay      = 6
	flavorPoints    = 5
	styleBonus      = 5
	priorityCeiling = 10
	milkMinRoast    = model.RoastMediumDark
	blackMaxRoast   = model.RoastMedium
)

// Score computes the match score of coffee for prefs. It fails only when
// prefs violate the input contract.
func Score(coffee model.Coffee, prefs model.Preferences) (model.ScoreBreakdown, error) {
	if err := prefs.Validate(); err != nil {
		return model.ScoreBreakdown{}, err
	}
	return score(coffee, prefs), nil
}

func score(coffee model.Coffee, prefs model.Preferences) model.ScoreBreakdown {
	return model.ScoreBreakdown{
		Roast:    roastProximity(coffee.Roast, prefs.RoastLevel),
		Flavor:   flavorOverlap(coffee, prefs.Flavors),
		Style:    styleCompatibility(coffee.Roast, prefs.DrinkStyle),
		Priority: priorityCeiling - coffee.Priority,
	}
}

func roastProximity(coffeeRoast, userRoast model.RoastLevel) int {
	diff := int(coffeeRoast) - int(userRoast)
	if diff < 0 {
		diff = -diff
	}
	return max(0, roastWeight-roastDecay*diff)
}

func flavorOverlap(coffee model.Coffee, flavors []model.FlavorNote) int {
	points := 0
	for _, f := range flavors {
		if coffee.HasNote(f) {
			points += flavorPoints
		}
	}
	return points
}

func styleCompatibility(roast model.RoastLevel, style model.DrinkStyle) int {
	switch {
	case style == model.WithMilk && roast >= milkMinRoast:
		return styleBonus
	case style == model.StraightUp && roast <= blackMaxRoast:
		return styleBonus
	default:
		return 0
	}
}

// Rank scores every coffee not listed in exclude and returns them ordered by
// descending score, ties broken by ascending priority. Excluding a coffee never
// changes the relative order of the others.
func Rank(catalog []model.Coffee, prefs model.Preferences, exclude ...string) (model.ScoredCandidates, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	ranked := make(model.ScoredCandidates, 0, len(catalog))
	for _, coffee := range catalog {
		if _, excluded := skip[coffee.ID]; excluded {
			continue
		}
		breakdown := score(coffee, prefs)
		ranked = append(ranked, model.ScoredCandidate{
			Coffee:    coffee,
			Breakdown: breakdown,
			Score:     breakdown.Total(),
		})
	}

	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w: %d coffees in catalog, %d excluded", ErrNoMatch, len(catalog), len(exclude))
	}

	ranked.Sort()
	return ranked, nil
}

// Best returns the top-ranked coffee.
func Best(catalog []model.Coffee, prefs model.Preferences, exclude ...string) (model.ScoredCandidate, error) {
	ranked, err := Rank(catalog, prefs, exclude...)
	if err != nil {
		return model.ScoredCandidate{}, err
	}
	return ranked[0], nil
}
