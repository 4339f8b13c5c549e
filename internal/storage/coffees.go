package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/Veraticus/bean-scene/internal/common"
	"github.com/Veraticus/bean-scene/internal/model"
)

const coffeeColumns = `id, name, url, description, origin, flavor_notes, roast_level,
	priority, espresso, milk, verified, updated_at`

// UpsertCoffees inserts or replaces catalog rows in one transaction.
func (s *SQLiteStorage) UpsertCoffees(ctx context.Context, coffees []model.Coffee) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(coffees) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.upsertCoffeesTx(ctx, tx, coffees); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit coffees: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) upsertCoffeesTx(ctx context.Context, q queryable, coffees []model.Coffee) error {
	now := time.Now().UTC()
	for i := range coffees {
		c := &coffees[i]
		if err := validateCoffee(c); err != nil {
			return err
		}

		notes, err := json.Marshal(noteNames(c.Notes))
		if err != nil {
			return fmt.Errorf("failed to encode flavor notes for %s: %w", c.ID, err)
		}

		_, err = q.ExecContext(ctx, `
			INSERT INTO coffees (`+coffeeColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				url = excluded.url,
				description = excluded.description,
				origin = excluded.origin,
				flavor_notes = excluded.flavor_notes,
				roast_level = excluded.roast_level,
				priority = excluded.priority,
				espresso = excluded.espresso,
				milk = excluded.milk,
				verified = excluded.verified,
				updated_at = excluded.updated_at`,
			c.ID, c.Name, c.URL, c.Description, c.Origin, string(notes), int(c.Roast),
			c.Priority, c.Espresso, c.Milk, c.Verified, now)
		if err != nil {
			return fmt.Errorf("failed to upsert coffee %s: %w", c.ID, err)
		}
	}
	return nil
}

// ListVerifiedCoffees returns the coffees that may be recommended, in priority order.
func (s *SQLiteStorage) ListVerifiedCoffees(ctx context.Context) ([]model.Coffee, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryCoffees(ctx, s.db, `
		SELECT `+coffeeColumns+`
		FROM coffees
		WHERE verified = 1
		ORDER BY priority, name`)
}

// ListCoffees returns every catalog row, verified or not.
func (s *SQLiteStorage) ListCoffees(ctx context.Context) ([]model.Coffee, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryCoffees(ctx, s.db, `
		SELECT `+coffeeColumns+`
		FROM coffees
		ORDER BY priority, name`)
}

// GetCoffee returns a single coffee by ID.
func (s *SQLiteStorage) GetCoffee(ctx context.Context, id string) (*model.Coffee, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+coffeeColumns+` FROM coffees WHERE id = ?`, id)
	coffee, err := scanCoffee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("coffee %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return coffee, nil
}

// SetVerified flips the verified flag on a coffee.
func (s *SQLiteStorage) SetVerified(ctx context.Context, id string, verified bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE coffees SET verified = ?, updated_at = ? WHERE id = ?`,
		verified, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update coffee %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("coffee %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) queryCoffees(ctx context.Context, q queryable, query string, args ...any) ([]model.Coffee, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query coffees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var coffees []model.Coffee
	for rows.Next() {
		coffee, err := scanCoffee(rows)
		if err != nil {
			return nil, err
		}
		coffees = append(coffees, *coffee)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coffees: %w", err)
	}
	return coffees, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoffee(row rowScanner) (*model.Coffee, error) {
	var (
		c         model.Coffee
		notes     string
		roast     int
		updatedAt sql.NullTime
	)

	err := row.Scan(&c.ID, &c.Name, &c.URL, &c.Description, &c.Origin, &notes, &roast,
		&c.Priority, &c.Espresso, &c.Milk, &c.Verified, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan coffee: %w", err)
	}

	var names []string
	if err := json.Unmarshal([]byte(notes), &names); err != nil {
		return nil, fmt.Errorf("coffee %s has corrupt flavor notes: %w", c.ID, common.ErrDatabaseCorrupted)
	}
	c.Notes = make([]model.FlavorNote, len(names))
	for i, name := range names {
		c.Notes[i] = model.FlavorNote(name)
	}

	c.Roast = model.RoastLevel(roast)
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return &c, nil
}

func noteNames(notes []model.FlavorNote) []string {
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = string(n)
	}
	return names
}
