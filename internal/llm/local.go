package llm

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/bean-scene/internal/catalog"
	"github.com/Veraticus/bean-scene/internal/model"
)

// LocalModel is the model identifier reported by the offline client.
const LocalModel = "local-rules"

const maxSuggestions = 3

var wordPattern = regexp.MustCompile(`[a-z]+`)

// flavorVariants maps common spellings onto the vocabulary.
var flavorVariants = []struct {
	word string
	note model.FlavorNote
}{
	{"chocolatey", model.FlavorChocolate},
	{"cocoa", model.FlavorChocolate},
	{"nut", model.FlavorNutty},
	{"nuts", model.FlavorNutty},
	{"fruit", model.FlavorFruity},
	{"flowery", model.FlavorFloral},
	{"berries", model.FlavorBerry},
	{"spicy", model.FlavorSpices},
	{"spice", model.FlavorSpices},
	{"lemon", model.FlavorCitrus},
	{"orange", model.FlavorCitrus},
}

// CatalogLoader supplies products to the offline client.
type CatalogLoader interface {
	Load(ctx context.Context) ([]model.Coffee, error)
}

// query is the parsed latest user message.
type query struct {
	words map[string]bool
	text  string
}

func newQuery(msg string) query {
	text := strings.ToLower(msg)
	words := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(text, -1) {
		words[w] = true
	}
	return query{text: text, words: words}
}

func (q query) hasAny(words ...string) bool {
	for _, w := range words {
		if q.words[w] {
			return true
		}
	}
	return false
}

// rule answers a message when match returns true.
type rule struct {
	match   func(q query, coffees []model.Coffee) bool
	respond func(q query, coffees []model.Coffee) string
	name    string
}

// LocalClient answers from a fixed rule table against the catalog. It needs
// no network and is the last link of every provider chain.
type LocalClient struct {
	catalog CatalogLoader
	rules   []rule
}

// NewLocalClient creates the offline client. A nil loader uses the bundled
// catalog.
func NewLocalClient(loader CatalogLoader) *LocalClient {
	return &LocalClient{catalog: loader, rules: defaultRules()}
}

func (c *LocalClient) ClientType() string { return "local" }

// Complete answers the latest user message with the first matching rule.
func (c *LocalClient) Complete(ctx context.Context, req Request) (Result, error) {
	msg, ok := LastUserMessage(req.Messages)
	if !ok {
		return Result{}, fmt.Errorf("%w: no user message", ErrInvalidRequest)
	}

	coffees := c.coffees(ctx)
	q := newQuery(msg)

	for _, r := range c.rules {
		if r.match(q, coffees) {
			return Result{
				Completion: r.respond(q, coffees),
				Model:      LocalModel,
				Provider:   c.ClientType(),
			}, nil
		}
	}

	// The table ends with a catch-all; reaching here is a table defect.
	return Result{}, fmt.Errorf("no local rule matched %q", msg)
}

func (c *LocalClient) coffees(ctx context.Context) []model.Coffee {
	if c.catalog == nil {
		return catalog.Bundled()
	}
	coffees, err := c.catalog.Load(ctx)
	if err != nil || len(coffees) == 0 {
		return catalog.Bundled()
	}
	return coffees
}

func defaultRules() []rule {
	return []rule{
		{
			name: "greeting",
			match: func(q query, _ []model.Coffee) bool {
				return len(q.words) <= 4 && q.hasAny("hi", "hello", "hey", "howdy", "morning", "afternoon", "evening")
			},
			respond: func(_ query, _ []model.Coffee) string {
				return "Hello! I can help you find a coffee you'll love. Tell me which flavors you enjoy, " +
					"how dark you like your roast, or whether you drink it with milk."
			},
		},
		{
			name: "flavor",
			match: func(q query, _ []model.Coffee) bool {
				return mentionedFlavor(q) != ""
			},
			respond: func(q query, coffees []model.Coffee) string {
				note := mentionedFlavor(q)
				matches := filter(coffees, func(c model.Coffee) bool { return c.HasNote(note) })
				if len(matches) == 0 {
					return fmt.Sprintf("None of our current coffees list %s notes. %s", note, suggestTop(coffees))
				}
				return fmt.Sprintf("If you like %s notes, try %s.", note, describe(matches))
			},
		},
		{
			name: "origin",
			match: func(q query, coffees []model.Coffee) bool {
				return mentionedOrigin(q, coffees) != ""
			},
			respond: func(q query, coffees []model.Coffee) string {
				origin := mentionedOrigin(q, coffees)
				matches := filter(coffees, func(c model.Coffee) bool { return strings.EqualFold(c.Origin, origin) })
				return fmt.Sprintf("From %s we currently have %s.", origin, describe(matches))
			},
		},
		{
			name: "roast",
			match: func(q query, _ []model.Coffee) bool {
				_, _, ok := mentionedRoast(q)
				return ok
			},
			respond: func(q query, coffees []model.Coffee) string {
				lo, hi, _ := mentionedRoast(q)
				matches := filter(coffees, func(c model.Coffee) bool { return c.Roast >= lo && c.Roast <= hi })
				label := strings.ToLower(lo.String())
				if lo != hi {
					label = fmt.Sprintf("%s to %s", strings.ToLower(lo.String()), strings.ToLower(hi.String()))
				}
				if len(matches) == 0 {
					return fmt.Sprintf("We don't have a %s roast right now. %s", label, suggestTop(coffees))
				}
				return fmt.Sprintf("For a %s roast, try %s.", label, describe(matches))
			},
		},
		{
			name: "brew",
			match: func(q query, _ []model.Coffee) bool {
				return q.hasAny("espresso", "milk", "latte", "cappuccino", "flat", "cortado", "filter", "pour", "drip", "aeropress", "chemex")
			},
			respond: func(q query, coffees []model.Coffee) string {
				switch {
				case q.hasAny("milk", "latte", "cappuccino", "flat", "cortado"):
					matches := filter(coffees, func(c model.Coffee) bool { return c.Milk })
					return fmt.Sprintf("For milk drinks, darker roasts hold up best. Try %s.", describe(matches))
				case q.hasAny("espresso"):
					matches := filter(coffees, func(c model.Coffee) bool { return c.Espresso })
					return fmt.Sprintf("For espresso, try %s.", describe(matches))
				default:
					matches := filter(coffees, func(c model.Coffee) bool { return c.Roast <= model.RoastMedium })
					return fmt.Sprintf("For filter brewing, lighter roasts show off their flavor. Try %s.", describe(matches))
				}
			},
		},
		{
			name:  "default",
			match: func(query, []model.Coffee) bool { return true },
			respond: func(_ query, coffees []model.Coffee) string {
				return "I'm not sure about that one, but I can help you pick a coffee. " + suggestTop(coffees)
			},
		},
	}
}

func mentionedFlavor(q query) model.FlavorNote {
	for _, note := range model.FlavorVocabulary {
		if q.words[string(note)] {
			return note
		}
	}
	for _, v := range flavorVariants {
		if q.words[v.word] {
			return v.note
		}
	}
	return ""
}

func mentionedOrigin(q query, coffees []model.Coffee) string {
	for _, c := range coffees {
		if c.Origin != "" && strings.Contains(q.text, strings.ToLower(c.Origin)) {
			return c.Origin
		}
	}
	return ""
}

func mentionedRoast(q query) (lo, hi model.RoastLevel, ok bool) {
	switch {
	case strings.Contains(q.text, "medium-dark") || strings.Contains(q.text, "medium dark"):
		return model.RoastMediumDark, model.RoastMediumDark, true
	case strings.Contains(q.text, "light-medium") || strings.Contains(q.text, "light medium"):
		return model.RoastLightMedium, model.RoastLightMedium, true
	case q.hasAny("light", "lighter", "bright"):
		return model.RoastLight, model.RoastLightMedium, true
	case q.hasAny("dark", "darker", "bold", "strong"):
		return model.RoastDark, model.RoastExtraDark, true
	case q.hasAny("medium", "balanced"):
		return model.RoastMedium, model.RoastMediumDark, true
	}
	return 0, 0, false
}

func filter(coffees []model.Coffee, keep func(model.Coffee) bool) []model.Coffee {
	var out []model.Coffee
	for _, c := range coffees {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// describe lists up to maxSuggestions coffees, most promoted first.
func describe(coffees []model.Coffee) string {
	if len(coffees) == 0 {
		return "asking us for a recommendation"
	}

	sorted := append([]model.Coffee(nil), coffees...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })
	if len(sorted) > maxSuggestions {
		sorted = sorted[:maxSuggestions]
	}

	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = fmt.Sprintf("%s (%s roast) %s", c.Name, strings.ToLower(c.Roast.String()), c.URL)
	}
	return strings.Join(parts, "; ")
}

func suggestTop(coffees []model.Coffee) string {
	if len(coffees) == 0 {
		return "Take the quiz to get a recommendation."
	}
	return fmt.Sprintf("Our current favorites are %s.", describe(coffees))
}
