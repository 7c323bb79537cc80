package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthside/mealplan/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func floatPtr(f float64) *float64 { return &f }

func pantryRow(id, name, key string, qty float64, unit string) model.PantryRow {
	return model.PantryRow{
		ID:             id,
		Name:           name,
		NameLower:      key,
		QuantityText:   "2 cups",
		QuantityNumber: floatPtr(qty),
		Unit:           unit,
	}
}

// --- Capabilities ---

func TestSQLite_FreshDatabaseIsStructured(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.True(t, st.Capabilities().StructuredQuantity)
}

// --- Pantry ---

func TestSQLite_Pantry_InsertAndListByKey(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.InsertPantryRow(ctx, pantryRow("r1", "Flour", "flour", 2, "cup")))
	require.NoError(t, st.InsertPantryRow(ctx, pantryRow("r2", "Sugar", "sugar", 1, "cup")))

	rows, err := st.ListPantryByKey(ctx, "flour")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "r1", rows[0].ID)
	assert.Equal(t, "Flour", rows[0].Name)
	require.NotNil(t, rows[0].QuantityNumber)
	assert.InDelta(t, 2, *rows[0].QuantityNumber, 1e-9)
	assert.Equal(t, "cup", rows[0].Unit)
}

func TestSQLite_Pantry_AllocationOrderIsByID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	// Insert out of id order; listing must come back id ASC.
	require.NoError(t, st.InsertPantryRow(ctx, pantryRow("b", "Flour", "flour", 1, "cup")))
	require.NoError(t, st.InsertPantryRow(ctx, pantryRow("a", "Flour", "flour", 2, "cup")))

	rows, err := st.ListPantryByKey(ctx, "flour")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].ID)
	assert.Equal(t, "b", rows[1].ID)
}

func TestSQLite_Pantry_LegacyRowsMatchOnTrimmedName(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	// A row without name_lower falls back to lower(trim(name)).
	row := model.PantryRow{ID: "x", Name: "  Brown Rice ", QuantityText: "1 cup"}
	require.NoError(t, st.InsertPantryRow(ctx, row))

	rows, err := st.ListPantryByKey(ctx, "brown rice")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "x", rows[0].ID)
	assert.Nil(t, rows[0].QuantityNumber)
}

func TestSQLite_Pantry_Update(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	row := pantryRow("r1", "Flour", "flour", 2, "cup")
	require.NoError(t, st.InsertPantryRow(ctx, row))

	row.QuantityNumber = floatPtr(0.5)
	row.QuantityText = "0.5 cup"
	require.NoError(t, st.UpdatePantryRow(ctx, row))

	rows, err := st.ListPantryByKey(ctx, "flour")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 0.5, *rows[0].QuantityNumber, 1e-9)
	assert.Equal(t, "0.5 cup", rows[0].QuantityText)
}

func TestSQLite_Pantry_UpdateMissingRow(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdatePantryRow(context.Background(), pantryRow("ghost", "X", "x", 1, "cup"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_Pantry_BulkInsert(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.BulkInsertPantry(ctx, []model.PantryRow{
		pantryRow("r1", "Flour", "flour", 2, "cup"),
		pantryRow("r2", "Sugar", "sugar", 1, "cup"),
		pantryRow("r3", "Milk", "milk", 1, "l"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	all, err := st.ListPantry(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLite_Pantry_BulkInsertEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)

	n, err := st.BulkInsertPantry(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// --- Recipes ---

func TestSQLite_Recipe_SaveAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	qty := 1.5
	rec := model.Recipe{
		ID:       "rec1",
		Title:    "Pesto Pasta",
		Servings: 4,
		Ingredients: []model.IngredientRecord{
			{RawText: "1 1/2 cups basil", NormalizedKey: "basil", QuantityNumber: &qty, Unit: "cup"},
		},
	}
	require.NoError(t, st.SaveRecipe(ctx, rec))

	got, err := st.GetRecipe(ctx, "rec1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Pesto Pasta", got.Title)
	assert.Equal(t, 4, got.Servings)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "basil", got.Ingredients[0].NormalizedKey)
	require.NotNil(t, got.Ingredients[0].QuantityNumber)
	assert.InDelta(t, 1.5, *got.Ingredients[0].QuantityNumber, 1e-9)
}

func TestSQLite_Recipe_SaveIsUpsert(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := model.Recipe{ID: "rec1", Title: "Old", Servings: 2, Ingredients: []model.IngredientRecord{}}
	require.NoError(t, st.SaveRecipe(ctx, rec))

	rec.Title = "New"
	rec.Servings = 6
	require.NoError(t, st.SaveRecipe(ctx, rec))

	got, err := st.GetRecipe(ctx, "rec1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, 6, got.Servings)
}

func TestSQLite_Recipe_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetRecipe(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// --- Plan entries ---

func TestSQLite_Plan_CreateGetDelete(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRecipe(ctx, model.Recipe{ID: "rec1", Title: "Soup", Servings: 2, Ingredients: []model.IngredientRecord{}}))

	entry := model.PlanEntry{
		ID:       "p1",
		RecipeID: "rec1",
		Date:     "2026-09-01",
		Slot:     model.SlotDinner,
		Servings: 2,
		Deductions: []model.Deduction{
			{NormalizedKey: "carrot", BaseUnit: "g", Needed: 200, Deducted: 150},
		},
	}
	require.NoError(t, st.CreatePlanEntry(ctx, entry))

	got, err := st.GetPlanEntry(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.SlotDinner, got.Slot)
	require.Len(t, got.Deductions, 1)
	assert.InDelta(t, 50, got.Deductions[0].Shortfall(), 1e-9)

	require.NoError(t, st.DeletePlanEntry(ctx, "p1"))

	got, err = st.GetPlanEntry(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_Plan_DeleteMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.DeletePlanEntry(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_Plan_ListRange(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRecipe(ctx, model.Recipe{ID: "rec1", Title: "Soup", Servings: 2, Ingredients: []model.IngredientRecord{}}))
	for _, e := range []model.PlanEntry{
		{ID: "p1", RecipeID: "rec1", Date: "2026-09-01", Slot: model.SlotLunch, Servings: 2},
		{ID: "p2", RecipeID: "rec1", Date: "2026-09-03", Slot: model.SlotDinner, Servings: 2},
		{ID: "p3", RecipeID: "rec1", Date: "2026-09-10", Slot: model.SlotDinner, Servings: 2},
	} {
		require.NoError(t, st.CreatePlanEntry(ctx, e))
	}

	entries, err := st.ListPlanEntries(ctx, "2026-09-01", "2026-09-05")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "p1", entries[0].ID)
	assert.Equal(t, "p2", entries[1].ID)
}
