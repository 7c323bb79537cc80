package pantry

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hearthside/mealplan/internal/model"
	"github.com/hearthside/mealplan/internal/units"
)

// RowStore is the slice of the persistence layer the engine needs. Rows from
// ListByKey arrive in allocation order (match key ASC, id ASC) and the order
// is reproducible across runs.
type RowStore interface {
	ListByKey(ctx context.Context, key string) ([]model.PantryRow, error)
	Update(ctx context.Context, row model.PantryRow) error
	Insert(ctx context.Context, row model.PantryRow) error
}

// Engine allocates and restores pantry stock. It takes no locks of its own:
// callers serialize plan-mutating operations against the same rows.
type Engine struct {
	rows RowStore
	src  QuantitySource
}

// NewEngine builds an engine over a row store. structured reports whether
// the store carries structured quantity/unit columns; it is computed once by
// the store and injected here rather than sniffed per call.
func NewEngine(rows RowStore, structured bool) *Engine {
	return &Engine{rows: rows, src: SourceFor(structured)}
}

// Deduct removes up to qty (expressed in baseUnit) from pantry rows matching
// key, in allocation order, and returns the amount actually removed. Rows
// whose unit family differs from baseUnit's are skipped, not failed.
// A return smaller than qty means the pantry ran short; that is a normal
// outcome the caller reports, not an error. Errors are store I/O only.
func (e *Engine) Deduct(ctx context.Context, key string, qty float64, baseUnit string) (float64, error) {
	if !usableRequest(key, qty, baseUnit) {
		return 0, nil
	}

	rowList, err := e.rows.ListByKey(ctx, key)
	if err != nil {
		return 0, eris.Wrapf(err, "pantry: list rows for %q", key)
	}

	remaining := qty
	var total float64
	for i := range rowList {
		if remaining <= 0 {
			break
		}
		row := rowList[i]

		avail, unit, ok := e.availableInBase(row, baseUnit)
		if !ok {
			continue
		}

		take := math.Min(avail, remaining)
		leftoverBase := avail - take

		// Write the leftover back in the row's own unit so the user's
		// entered unit survives the deduction.
		conv := units.Convert(leftoverBase, baseUnit, unit)
		if !conv.OK {
			continue
		}
		e.src.Apply(&row, conv.Qty, unit)
		if err := e.rows.Update(ctx, row); err != nil {
			return total, eris.Wrapf(err, "pantry: update row %s", row.ID)
		}

		total += take
		remaining -= take
	}

	if total < qty {
		zap.L().Debug("pantry shortfall",
			zap.String("key", key),
			zap.Float64("needed", qty),
			zap.Float64("deducted", total),
			zap.String("base_unit", baseUnit),
		)
	}
	return total, nil
}

// Restock adds qty (in baseUnit) back to the first matching row in
// allocation order, or creates a single new row when none exists. Unlike
// deduction, a restock never spreads across rows.
func (e *Engine) Restock(ctx context.Context, key string, qty float64, baseUnit string) error {
	if !usableRequest(key, qty, baseUnit) {
		return nil
	}

	rowList, err := e.rows.ListByKey(ctx, key)
	if err != nil {
		return eris.Wrapf(err, "pantry: list rows for %q", key)
	}

	for i := range rowList {
		row := rowList[i]
		cur, unit, ok := e.src.Resolve(row)
		if !ok || cur < 0 {
			// The first row is the only merge target; an unreadable row
			// means the restock lands in a fresh row. A fully deducted row
			// (zero quantity) still merges, so plan-then-unplan restores the
			// original row instead of duplicating it.
			break
		}
		avail := units.Convert(cur, unit, baseUnit)
		if !avail.OK {
			break
		}
		conv := units.Convert(avail.Qty+qty, baseUnit, unit)
		if !conv.OK {
			break
		}
		e.src.Apply(&row, conv.Qty, unit)
		if err := e.rows.Update(ctx, row); err != nil {
			return eris.Wrapf(err, "pantry: update row %s", row.ID)
		}
		return nil
	}

	row := e.newRow(key, qty, baseUnit)
	if err := e.rows.Insert(ctx, row); err != nil {
		return eris.Wrapf(err, "pantry: insert row for %q", key)
	}
	return nil
}

// availableInBase resolves a row's quantity and converts it into baseUnit.
// Returns the row's own unit alongside so write-back can restore it.
func (e *Engine) availableInBase(row model.PantryRow, baseUnit string) (float64, string, bool) {
	qty, unit, ok := e.src.Resolve(row)
	if !ok || qty <= 0 {
		return 0, "", false
	}
	conv := units.Convert(qty, unit, baseUnit)
	if !conv.OK {
		return 0, "", false
	}
	return conv.Qty, unit, true
}

func (e *Engine) newRow(key string, qty float64, baseUnit string) model.PantryRow {
	now := time.Now().UTC()
	row := model.PantryRow{
		ID:        uuid.New().String(),
		Name:      displayNameFor(key),
		NameLower: key,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.src.Apply(&row, qty, baseUnit)
	return row
}

// usableRequest guards the engine preconditions: non-empty key, finite
// positive quantity, resolvable unit. Anything else is a defined no-op.
func usableRequest(key string, qty float64, unit string) bool {
	if strings.TrimSpace(key) == "" {
		return false
	}
	if qty <= 0 || math.IsInf(qty, 0) || math.IsNaN(qty) {
		return false
	}
	fam, _ := units.FamilyOf(unit)
	return fam != ""
}

func displayNameFor(key string) string {
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
