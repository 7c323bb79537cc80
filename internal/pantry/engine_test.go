package pantry

import (
	"context"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthside/mealplan/internal/model"
)

// fakeRowStore is an in-memory RowStore with the allocation ordering the
// real stores guarantee: match key ASC, then id ASC.
type fakeRowStore struct {
	rows    []model.PantryRow
	updates int
	inserts int
}

func (f *fakeRowStore) ListByKey(_ context.Context, key string) ([]model.PantryRow, error) {
	var out []model.PantryRow
	for _, r := range f.rows {
		if r.MatchKey() == key {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchKey() != out[j].MatchKey() {
			return out[i].MatchKey() < out[j].MatchKey()
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeRowStore) Update(_ context.Context, row model.PantryRow) error {
	f.updates++
	for i := range f.rows {
		if f.rows[i].ID == row.ID {
			f.rows[i] = row
			return nil
		}
	}
	return nil
}

func (f *fakeRowStore) Insert(_ context.Context, row model.PantryRow) error {
	f.inserts++
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeRowStore) byID(id string) model.PantryRow {
	for _, r := range f.rows {
		if r.ID == id {
			return r
		}
	}
	return model.PantryRow{}
}

func structuredRow(id, key, unit string, qty float64) model.PantryRow {
	return model.PantryRow{
		ID:             id,
		Name:           key,
		NameLower:      key,
		QuantityNumber: floatPtr(qty),
		Unit:           unit,
		QuantityText:   FormatQuantity(qty, unit),
	}
}

func TestDeduct_SpansRowsInAllocationOrder(t *testing.T) {
	fs := &fakeRowStore{rows: []model.PantryRow{
		structuredRow("a", "flour", "cup", 2),
		structuredRow("b", "flour", "cup", 1),
	}}
	eng := NewEngine(fs, true)

	// Need 2.5 cups = 120 tsp.
	got, err := eng.Deduct(context.Background(), "flour", 120, "tsp")
	require.NoError(t, err)
	assert.InDelta(t, 120, got, 1e-9)

	first := fs.byID("a")
	second := fs.byID("b")
	require.NotNil(t, first.QuantityNumber)
	require.NotNil(t, second.QuantityNumber)
	assert.InDelta(t, 0, *first.QuantityNumber, 1e-9)
	assert.InDelta(t, 0.5, *second.QuantityNumber, 1e-9)
	assert.Equal(t, "cup", first.Unit)
	assert.Equal(t, "cup", second.Unit)
}

func TestDeduct_ShortfallIsNotAnError(t *testing.T) {
	fs := &fakeRowStore{rows: []model.PantryRow{
		structuredRow("a", "sugar", "cup", 2),
	}}
	eng := NewEngine(fs, true)

	got, err := eng.Deduct(context.Background(), "sugar", 5*48, "tsp")
	require.NoError(t, err)
	assert.InDelta(t, 2*48, got, 1e-9)
}

func TestDeduct_SkipsIncompatibleFamily(t *testing.T) {
	fs := &fakeRowStore{rows: []model.PantryRow{
		structuredRow("a", "rice", "g", 500),
		structuredRow("b", "rice", "cup", 2),
	}}
	eng := NewEngine(fs, true)

	got, err := eng.Deduct(context.Background(), "rice", 48, "tsp")
	require.NoError(t, err)
	assert.InDelta(t, 48, got, 1e-9)

	// The gram row is untouched; the cup row lost one cup.
	assert.InDelta(t, 500, *fs.byID("a").QuantityNumber, 1e-9)
	assert.InDelta(t, 1, *fs.byID("b").QuantityNumber, 1e-9)
}

func TestDeduct_WritesBackInRowUnit(t *testing.T) {
	fs := &fakeRowStore{rows: []model.PantryRow{
		structuredRow("a", "milk", "l", 1),
	}}
	eng := NewEngine(fs, true)

	got, err := eng.Deduct(context.Background(), "milk", 250, "ml")
	require.NoError(t, err)
	assert.InDelta(t, 250, got, 1e-9)

	row := fs.byID("a")
	assert.Equal(t, "l", row.Unit)
	assert.InDelta(t, 0.75, *row.QuantityNumber, 1e-9)
	assert.Equal(t, "0.75 l", row.QuantityText)
}

func TestDeduct_LegacyTextOnlyRows(t *testing.T) {
	fs := &fakeRowStore{rows: []model.PantryRow{
		{ID: "a", Name: "Butter", QuantityText: "2 cups"},
	}}
	eng := NewEngine(fs, false)

	got, err := eng.Deduct(context.Background(), "butter", 24, "tsp")
	require.NoError(t, err)
	assert.InDelta(t, 24, got, 1e-9)

	row := fs.byID("a")
	assert.Equal(t, "1.5 cups", row.QuantityText)
	assert.Nil(t, row.QuantityNumber)
}

func TestDeduct_SkipsUnparseableAndNonPositiveRows(t *testing.T) {
	fs := &fakeRowStore{rows: []model.PantryRow{
		{ID: "a", Name: "oats", NameLower: "oats", QuantityText: "plenty"},
		structuredRow("b", "oats", "cup", 0),
		structuredRow("c", "oats", "cup", 1),
	}}
	eng := NewEngine(fs, true)

	got, err := eng.Deduct(context.Background(), "oats", 48, "tsp")
	require.NoError(t, err)
	assert.InDelta(t, 48, got, 1e-9)
	assert.Equal(t, 1, fs.updates)
}

func TestDeduct_PreconditionNoOps(t *testing.T) {
	fs := &fakeRowStore{rows: []model.PantryRow{
		structuredRow("a", "salt", "tsp", 5),
	}}
	eng := NewEngine(fs, true)
	ctx := context.Background()

	for _, tc := range []struct {
		key  string
		qty  float64
		unit string
	}{
		{"", 1, "tsp"},
		{"salt", 0, "tsp"},
		{"salt", -2, "tsp"},
		{"salt", math.Inf(1), "tsp"},
		{"salt", math.NaN(), "tsp"},
		{"salt", 1, ""},
	} {
		got, err := eng.Deduct(ctx, tc.key, tc.qty, tc.unit)
		require.NoError(t, err)
		assert.Zero(t, got)
	}
	assert.Zero(t, fs.updates)
}

func TestRestock_AddsToFirstRowOnly(t *testing.T) {
	fs := &fakeRowStore{rows: []model.PantryRow{
		structuredRow("a", "flour", "cup", 1),
		structuredRow("b", "flour", "cup", 1),
	}}
	eng := NewEngine(fs, true)

	// Restock one cup (48 tsp): first row only, second untouched.
	err := eng.Restock(context.Background(), "flour", 48, "tsp")
	require.NoError(t, err)

	assert.InDelta(t, 2, *fs.byID("a").QuantityNumber, 1e-9)
	assert.InDelta(t, 1, *fs.byID("b").QuantityNumber, 1e-9)
	assert.Zero(t, fs.inserts)
}

func TestRestock_CreatesSingleRowForUnknownKey(t *testing.T) {
	fs := &fakeRowStore{}
	eng := NewEngine(fs, true)

	err := eng.Restock(context.Background(), "saffron", 2, "g")
	require.NoError(t, err)
	require.Len(t, fs.rows, 1)

	row := fs.rows[0]
	assert.NotEmpty(t, row.ID)
	assert.Equal(t, "Saffron", row.Name)
	assert.Equal(t, "saffron", row.NameLower)
	require.NotNil(t, row.QuantityNumber)
	assert.InDelta(t, 2, *row.QuantityNumber, 1e-9)
	assert.Equal(t, "g", row.Unit)
}

func TestRestock_IncompatibleFirstRowGetsFreshRow(t *testing.T) {
	fs := &fakeRowStore{rows: []model.PantryRow{
		structuredRow("a", "rice", "g", 500),
	}}
	eng := NewEngine(fs, true)

	err := eng.Restock(context.Background(), "rice", 48, "tsp")
	require.NoError(t, err)
	require.Len(t, fs.rows, 2)
	assert.InDelta(t, 500, *fs.byID("a").QuantityNumber, 1e-9)
}

func TestRestock_PreconditionNoOp(t *testing.T) {
	fs := &fakeRowStore{}
	eng := NewEngine(fs, true)

	require.NoError(t, eng.Restock(context.Background(), "", 1, "g"))
	require.NoError(t, eng.Restock(context.Background(), "salt", -1, "g"))
	assert.Empty(t, fs.rows)
}

func TestRestock_MergesIntoFullyDeductedRow(t *testing.T) {
	fs := &fakeRowStore{rows: []model.PantryRow{
		structuredRow("a", "flour", "cup", 0),
	}}
	eng := NewEngine(fs, true)

	err := eng.Restock(context.Background(), "flour", 48, "tsp")
	require.NoError(t, err)
	require.Len(t, fs.rows, 1)
	assert.InDelta(t, 1, *fs.byID("a").QuantityNumber, 1e-9)
}

func TestDeductThenRestock_RoundTrip(t *testing.T) {
	fs := &fakeRowStore{rows: []model.PantryRow{
		structuredRow("a", "flour", "cup", 3),
	}}
	eng := NewEngine(fs, true)
	ctx := context.Background()

	got, err := eng.Deduct(ctx, "flour", 100, "tsp")
	require.NoError(t, err)
	require.NoError(t, eng.Restock(ctx, "flour", got, "tsp"))

	row := fs.byID("a")
	assert.InDelta(t, 3, *row.QuantityNumber, 1e-3)
}
