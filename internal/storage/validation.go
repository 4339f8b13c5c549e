// Package storage provides the data persistence layer for bean-scene.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/bean-scene/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrInvalidCoffee   = errors.New("invalid coffee")
	ErrInvalidUsage    = errors.New("invalid usage record")
	ErrInvalidPageSize = errors.New("limit must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateCoffee checks the fields the catalog relies on.
func validateCoffee(c *model.Coffee) error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: missing ID", ErrInvalidCoffee)
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: %s: missing name", ErrInvalidCoffee, c.ID)
	case strings.TrimSpace(c.URL) == "":
		return fmt.Errorf("%w: %s: missing URL", ErrInvalidCoffee, c.ID)
	case !c.Roast.Valid():
		return fmt.Errorf("%w: %s: roast level %d is outside 1..6", ErrInvalidCoffee, c.ID, int(c.Roast))
	}
	return nil
}

// validateUsage checks a usage record before it is written.
func validateUsage(r *model.UsageRecord) error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: missing ID", ErrInvalidUsage)
	case r.Model == "":
		return fmt.Errorf("%w: missing model", ErrInvalidUsage)
	case r.Subject == "":
		return fmt.Errorf("%w: missing subject", ErrInvalidUsage)
	case r.Confidence < 0 || r.Confidence > 1:
		return fmt.Errorf("%w: confidence %.2f is outside 0..1", ErrInvalidUsage, r.Confidence)
	}
	return nil
}
