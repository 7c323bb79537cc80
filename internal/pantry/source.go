package pantry

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hearthside/mealplan/internal/model"
	"github.com/hearthside/mealplan/internal/units"
)

// QuantitySource abstracts how a row's current quantity is read and written.
// Schema detection happens once at the boundary (the store reports whether
// structured columns exist); the deduct/restock algorithm is written once
// against this interface.
type QuantitySource interface {
	// Resolve returns the row's quantity and its unit as entered. ok is
	// false when no usable quantity can be derived.
	Resolve(row model.PantryRow) (qty float64, unit string, ok bool)
	// Apply writes a new quantity back onto the row in the given unit,
	// rounded to four decimal places for display.
	Apply(row *model.PantryRow, qty float64, unit string)
}

// StructuredSource reads the QuantityNumber/Unit columns, falling back to
// the display text for rows created before the schema upgrade, and keeps
// both representations in sync on write.
type StructuredSource struct{}

func (StructuredSource) Resolve(row model.PantryRow) (float64, string, bool) {
	if row.QuantityNumber != nil {
		return *row.QuantityNumber, row.Unit, row.Unit != ""
	}
	return resolveFromText(row.QuantityText)
}

func (StructuredSource) Apply(row *model.PantryRow, qty float64, unit string) {
	q := round4(qty)
	row.QuantityNumber = &q
	row.Unit = units.Canonical(unit)
	row.QuantityText = FormatQuantity(q, unit)
	row.UpdatedAt = time.Now().UTC()
}

// TextOnlySource supports legacy stores with no structured columns: the
// display string is both the source of truth and the write target.
type TextOnlySource struct{}

func (TextOnlySource) Resolve(row model.PantryRow) (float64, string, bool) {
	return resolveFromText(row.QuantityText)
}

func (TextOnlySource) Apply(row *model.PantryRow, qty float64, unit string) {
	row.QuantityText = FormatQuantity(round4(qty), unit)
	row.UpdatedAt = time.Now().UTC()
}

// SourceFor picks the quantity source matching the store's capabilities.
func SourceFor(structured bool) QuantitySource {
	if structured {
		return StructuredSource{}
	}
	return TextOnlySource{}
}

func resolveFromText(text string) (float64, string, bool) {
	pq := ParseQuantityText(text)
	if pq.Number == nil || pq.Unit == "" {
		return 0, "", false
	}
	return *pq.Number, pq.Unit, true
}

// FormatQuantity renders a quantity and unit as pantry display text,
// preserving the unit spelling the user entered.
func FormatQuantity(qty float64, unit string) string {
	s := strconv.FormatFloat(qty, 'f', -1, 64)
	if unit == "" {
		return s
	}
	return s + " " + strings.TrimSpace(unit)
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
