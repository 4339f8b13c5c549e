package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/bean-scene/internal/validation"
)

// ErrInvalidPreferences marks a preference set that breaks the input contract.
var ErrInvalidPreferences = errors.New("invalid preferences")

// MaxFlavors is the most flavor notes a user may select.
const MaxFlavors = 3

// DrinkStyle is how the user drinks their coffee.
type DrinkStyle string

// Drink styles offered by the quiz.
const (
	StraightUp DrinkStyle = "Straight up"
	WithMilk   DrinkStyle = "With milk"
)

// BrewMethod is how the user brews.
type BrewMethod string

// Brew methods offered by the quiz.
const (
	BrewEspresso BrewMethod = "Espresso"
	BrewFilter   BrewMethod = "Filter"
)

func init() {
	validation.RegisterOneOf("drinkstyle", string(StraightUp), string(WithMilk))
	validation.RegisterOneOf("brewmethod", string(BrewEspresso), string(BrewFilter))

	notes := make([]string, len(FlavorVocabulary))
	for i, n := range FlavorVocabulary {
		notes[i] = string(n)
	}
	validation.RegisterOneOf("flavornote", notes...)
}

// Preferences are the quiz answers for one session.
type Preferences struct {
	DrinkStyle DrinkStyle   `json:"drinkStyle" validate:"required,drinkstyle"`
	BrewMethod BrewMethod   `json:"brewMethod" validate:"required,brewmethod"`
	Flavors    []FlavorNote `json:"flavors" validate:"max=3,unique,dive,flavornote"`
	RoastLevel RoastLevel   `json:"roastLevel" validate:"required,min=1,max=6"`
}

// Validate rejects malformed preferences. Over-long flavor lists are an
// error, never truncated.
func (p Preferences) Validate() error {
	if err := validation.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPreferences, err)
	}
	return nil
}

// ParseDrinkStyle accepts the quiz labels case-insensitively.
func ParseDrinkStyle(s string) (DrinkStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "straight up", "straight", "black":
		return StraightUp, nil
	case "with milk", "milk":
		return WithMilk, nil
	default:
		return "", fmt.Errorf("%w: unknown drink style %q", ErrInvalidPreferences, s)
	}
}

// ParseBrewMethod accepts the quiz labels case-insensitively.
func ParseBrewMethod(s string) (BrewMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "espresso":
		return BrewEspresso, nil
	case "filter", "pour over", "drip":
		return BrewFilter, nil
	default:
		return "", fmt.Errorf("%w: unknown brew method %q", ErrInvalidPreferences, s)
	}
}
