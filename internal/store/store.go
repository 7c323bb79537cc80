// Package store persists pantry rows, recipes, and plan entries behind a
// backend-neutral interface with SQLite and Postgres implementations.
package store

import (
	"context"

	"github.com/hearthside/mealplan/internal/model"
)

// Capabilities describes what the underlying schema supports. It is computed
// once when a store is opened and injected into consumers; nothing sniffs
// the schema per call.
type Capabilities struct {
	// StructuredQuantity is true when pantry rows carry quantity_number and
	// unit columns. Databases created by older releases only have the
	// display text.
	StructuredQuantity bool
}

// Store is the persistence interface for the meal-planner core.
type Store interface {
	Capabilities() Capabilities

	// Pantry. ListPantryByKey returns rows whose match key equals key,
	// ordered by COALESCE(name_lower, lower(trim(name))) ASC, id ASC,
	// the deterministic allocation order the pantry engine depends on.
	ListPantryByKey(ctx context.Context, key string) ([]model.PantryRow, error)
	ListPantry(ctx context.Context) ([]model.PantryRow, error)
	InsertPantryRow(ctx context.Context, row model.PantryRow) error
	UpdatePantryRow(ctx context.Context, row model.PantryRow) error
	BulkInsertPantry(ctx context.Context, rows []model.PantryRow) (int64, error)

	// Recipes
	SaveRecipe(ctx context.Context, recipe model.Recipe) error
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)

	// Plan
	CreatePlanEntry(ctx context.Context, entry model.PlanEntry) error
	GetPlanEntry(ctx context.Context, id string) (*model.PlanEntry, error)
	DeletePlanEntry(ctx context.Context, id string) error
	ListPlanEntries(ctx context.Context, from, to string) ([]model.PlanEntry, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// PantryRows adapts a Store to the pantry engine's narrower RowStore view.
type PantryRows struct {
	S Store
}

func (p PantryRows) ListByKey(ctx context.Context, key string) ([]model.PantryRow, error) {
	return p.S.ListPantryByKey(ctx, key)
}

func (p PantryRows) Update(ctx context.Context, row model.PantryRow) error {
	return p.S.UpdatePantryRow(ctx, row)
}

func (p PantryRows) Insert(ctx context.Context, row model.PantryRow) error {
	return p.S.InsertPantryRow(ctx, row)
}
