// Package testutil provides shared test fixtures for bean-scene: a migrated
// in-memory database and a fluent builder for catalog coffees.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/bean-scene/internal/model"
	"github.com/Veraticus/bean-scene/internal/storage"
)

// TestDB is a migrated in-memory database seeded with coffees.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
	Coffees []model.Coffee
}

// SetupTestDB creates a new in-memory test database seeded with coffees.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewCoffee("kenya").Roast(model.RoastLight).Verified().Build(),
//	)
func SetupTestDB(t *testing.T, coffees ...model.Coffee) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if err := store.UpsertCoffees(ctx, coffees); err != nil {
		t.Fatalf("failed to seed coffees: %v", err)
	}

	return &TestDB{Storage: store, Coffees: coffees, t: t}
}

// MustGetCoffee returns the stored coffee with the given ID or fails the test.
func (db *TestDB) MustGetCoffee(id string) model.Coffee {
	db.t.Helper()

	coffee, err := db.Storage.GetCoffee(context.Background(), id)
	if err != nil {
		db.t.Fatalf("coffee %q not found: %v", id, err)
	}
	return *coffee
}
