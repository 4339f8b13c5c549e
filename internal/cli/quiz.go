package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/bean-scene/internal/model"
)

// ErrTooManyAttempts is returned when an answer stays invalid.
var ErrTooManyAttempts = errors.New("too many invalid answers")

const maxAnswerAttempts = 3

// Quiz asks the four preference questions on a terminal.
type Quiz struct {
	reader *LineReader
	writer io.Writer
}

// NewQuiz creates a quiz reading answers from r.
func NewQuiz(r *LineReader, w io.Writer) *Quiz {
	return &Quiz{reader: r, writer: w}
}

// Run asks every question and returns validated preferences.
func (q *Quiz) Run(ctx context.Context) (model.Preferences, error) {
	var prefs model.Preferences

	if _, err := fmt.Fprintln(q.writer, FormatTitle("Find your coffee")); err != nil {
		return prefs, fmt.Errorf("failed to write quiz title: %w", err)
	}

	style, err := ask(ctx, q, "How do you drink it? [straight up / with milk]", model.ParseDrinkStyle)
	if err != nil {
		return prefs, err
	}
	brew, err := ask(ctx, q, "How do you brew? [espresso / filter]", model.ParseBrewMethod)
	if err != nil {
		return prefs, err
	}
	roast, err := ask(ctx, q, "Roast level, 1 (light) to 6 (extra dark)", parseRoast)
	if err != nil {
		return prefs, err
	}
	flavors, err := ask(ctx, q, "Up to 3 flavors, comma separated (blank for none): "+vocabulary(), ParseFlavors)
	if err != nil {
		return prefs, err
	}

	prefs = model.Preferences{
		DrinkStyle: style,
		BrewMethod: brew,
		RoastLevel: roast,
		Flavors:    flavors,
	}
	return prefs, prefs.Validate()
}

func ask[T any](ctx context.Context, q *Quiz, prompt string, parse func(string) (T, error)) (T, error) {
	var zero T
	for range maxAnswerAttempts {
		if _, err := fmt.Fprint(q.writer, FormatPrompt(prompt)); err != nil {
			return zero, fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := q.reader.ReadLine(ctx)
		if err != nil {
			return zero, err
		}

		value, err := parse(line)
		if err == nil {
			return value, nil
		}
		if _, werr := fmt.Fprintln(q.writer, FormatError(strings.TrimPrefix(err.Error(), model.ErrInvalidPreferences.Error()+": "))); werr != nil {
			return zero, fmt.Errorf("failed to write error: %w", werr)
		}
	}
	return zero, ErrTooManyAttempts
}

func parseRoast(s string) (model.RoastLevel, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !model.RoastLevel(n).Valid() {
		return 0, fmt.Errorf("%w: roast level must be a number from 1 to 6", model.ErrInvalidPreferences)
	}
	return model.RoastLevel(n), nil
}

// ParseFlavors splits a comma separated answer into at most three known notes.
func ParseFlavors(s string) ([]model.FlavorNote, error) {
	var notes []model.FlavorNote
	seen := make(map[model.FlavorNote]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		note, err := model.ParseFlavorNote(part)
		if err != nil {
			return nil, err
		}
		if seen[note] {
			continue
		}
		seen[note] = true
		notes = append(notes, note)
	}
	if len(notes) > model.MaxFlavors {
		return nil, fmt.Errorf("%w: pick at most %d flavors", model.ErrInvalidPreferences, model.MaxFlavors)
	}
	return notes, nil
}

func vocabulary() string {
	names := make([]string, len(model.FlavorVocabulary))
	for i, n := range model.FlavorVocabulary {
		names[i] = string(n)
	}
	return strings.Join(names, ", ")
}
