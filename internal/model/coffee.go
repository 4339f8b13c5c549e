package model

import (
	"fmt"
	"strings"
	"time"
)

// RoastLevel is the ordinal roast darkness, 1 (lightest) through 6 (darkest).
type RoastLevel int

// Roast levels used by the quiz and the catalog.
const (
	RoastLight RoastLevel = iota + 1
	RoastLightMedium
	RoastMedium
	RoastMediumDark
	RoastDark
	RoastExtraDark
)

// MinRoast and MaxRoast bound the roast scale.
const (
	MinRoast = RoastLight
	MaxRoast = RoastExtraDark
)

var roastNames = map[RoastLevel]string{
	RoastLight:       "Light",
	RoastLightMedium: "Light-Medium",
	RoastMedium:      "Medium",
	RoastMediumDark:  "Medium-Dark",
	RoastDark:        "Dark",
	RoastExtraDark:   "Extra Dark",
}

// String returns the display name of the roast level.
func (r RoastLevel) String() string {
	if name, ok := roastNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Roast(%d)", int(r))
}

// Valid reports whether r is on the 1..6 scale.
func (r RoastLevel) Valid() bool {
	return r >= MinRoast && r <= MaxRoast
}

// FlavorNote is a tag from the fixed flavor vocabulary.
type FlavorNote string

// Flavor vocabulary.
const (
	FlavorChocolate FlavorNote = "chocolate"
	FlavorNutty     FlavorNote = "nutty"
	FlavorCaramel   FlavorNote = "caramel"
	FlavorFruity    FlavorNote = "fruity"
	FlavorFloral    FlavorNote = "floral"
	FlavorSweet     FlavorNote = "sweet"
	FlavorCitrus    FlavorNote = "citrus"
	FlavorBerry     FlavorNote = "berry"
	FlavorSpices    FlavorNote = "spices"
	FlavorRoasted   FlavorNote = "roasted"
	FlavorEarthy    FlavorNote = "earthy"
	FlavorHoney     FlavorNote = "honey"
)

// FlavorVocabulary lists every accepted flavor note in display order.
var FlavorVocabulary = []FlavorNote{
	FlavorChocolate, FlavorNutty, FlavorCaramel, FlavorFruity,
	FlavorFloral, FlavorSweet, FlavorCitrus, FlavorBerry,
	FlavorSpices, FlavorRoasted, FlavorEarthy, FlavorHoney,
}

// ParseFlavorNote normalizes s and checks it against the vocabulary.
func ParseFlavorNote(s string) (FlavorNote, error) {
	note := FlavorNote(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FlavorVocabulary {
		if note == known {
			return note, nil
		}
	}
	return "", fmt.Errorf("%w: unknown flavor note %q", ErrInvalidPreferences, s)
}

// Coffee is a catalog entry. Values are treated as immutable once loaded.
type Coffee struct {
	UpdatedAt   time.Time    `json:"-"`
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	URL         string       `json:"url"`
	Description string       `json:"description"`
	Origin      string       `json:"origin,omitempty"`
	Notes       []FlavorNote `json:"flavor_notes"`
	Roast       RoastLevel   `json:"roast_level"`
	// Priority promotes a coffee in ties; lower is better, expected 0..10.
	Priority int  `json:"priority"`
	Espresso bool `json:"espresso"`
	Milk     bool `json:"milk"`
	Verified bool `json:"verified"`
}

// HasNote reports whether the coffee is tagged with note.
func (c Coffee) HasNote(note FlavorNote) bool {
	for _, n := range c.Notes {
		if n == note {
			return true
		}
	}
	return false
}

// NoteNames returns the flavor notes as plain strings.
func (c Coffee) NoteNames() []string {
	names := make([]string, len(c.Notes))
	for i, n := range c.Notes {
		names[i] = string(n)
	}
	return names
}
