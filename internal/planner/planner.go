// Package planner turns recipes into plan entries and keeps the pantry in
// step: planning a meal deducts its scaled ingredient needs, unplanning
// restocks exactly what was deducted.
package planner

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hearthside/mealplan/internal/ingredient"
	"github.com/hearthside/mealplan/internal/model"
	"github.com/hearthside/mealplan/internal/pantry"
	"github.com/hearthside/mealplan/internal/store"
	"github.com/hearthside/mealplan/internal/units"
)

const dateLayout = "2006-01-02"

// Service coordinates recipes, plan entries, and the pantry engine. It takes
// no locks: callers serialize plan and unplan calls touching the same rows.
type Service struct {
	store  store.Store
	engine *pantry.Engine
}

// New builds a planner over a store, wiring the pantry engine to the store's
// schema capabilities.
func New(s store.Store) *Service {
	return &Service{
		store:  s,
		engine: pantry.NewEngine(store.PantryRows{S: s}, s.Capabilities().StructuredQuantity),
	}
}

// CreateRecipe parses raw ingredient lines and persists the recipe. Blank
// lines are dropped; everything else parses to a record, by construction.
func (s *Service) CreateRecipe(ctx context.Context, title string, servings int, lines []string) (*model.Recipe, error) {
	if title == "" {
		return nil, eris.New("planner: recipe title is required")
	}
	if servings <= 0 {
		servings = 1
	}

	var records []model.IngredientRecord
	for _, line := range lines {
		rec := ingredient.ParseLine(line)
		if rec == nil {
			continue
		}
		records = append(records, *rec)
	}

	now := time.Now().UTC()
	recipe := model.Recipe{
		ID:          uuid.New().String(),
		Title:       title,
		Servings:    servings,
		Ingredients: records,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.SaveRecipe(ctx, recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Plan creates a plan entry for a recipe on a date and slot, deducting each
// ingredient's scaled need from the pantry. Shortfalls are recorded on the
// entry's deductions, not raised as errors.
func (s *Service) Plan(ctx context.Context, recipeID, date string, slot model.MealSlot, servings int) (*model.PlanEntry, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, eris.Wrapf(err, "planner: parse date %q", date)
	}
	if !model.ValidSlot(slot) {
		return nil, eris.Errorf("planner: invalid slot %q", slot)
	}
	if servings <= 0 {
		return nil, eris.Errorf("planner: servings must be positive, got %d", servings)
	}

	recipe, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, eris.Errorf("planner: recipe not found: %s", recipeID)
	}

	scale := 1.0
	if recipe.Servings > 0 {
		scale = float64(servings) / float64(recipe.Servings)
	}

	var deductions []model.Deduction
	for _, ing := range recipe.Ingredients {
		need, baseUnit, ok := baseNeed(ing, scale)
		if !ok {
			continue
		}
		deducted, err := s.engine.Deduct(ctx, ing.NormalizedKey, need, baseUnit)
		if err != nil {
			return nil, err
		}
		deductions = append(deductions, model.Deduction{
			NormalizedKey: ing.NormalizedKey,
			BaseUnit:      baseUnit,
			Needed:        need,
			Deducted:      deducted,
		})
	}

	entry := model.PlanEntry{
		ID:         uuid.New().String(),
		RecipeID:   recipe.ID,
		Date:       date,
		Slot:       slot,
		Servings:   servings,
		Deductions: deductions,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreatePlanEntry(ctx, entry); err != nil {
		return nil, err
	}

	zap.L().Info("meal planned",
		zap.String("entry_id", entry.ID),
		zap.String("recipe_id", recipe.ID),
		zap.String("date", date),
		zap.String("slot", string(slot)),
		zap.Int("servings", servings),
	)
	return &entry, nil
}

// Unplan removes a plan entry and restocks exactly the amounts its creation
// deducted, in each deduction's own base unit.
func (s *Service) Unplan(ctx context.Context, entryID string) error {
	entry, err := s.store.GetPlanEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return eris.Errorf("planner: plan entry not found: %s", entryID)
	}

	for _, d := range entry.Deductions {
		if d.Deducted <= 0 {
			continue
		}
		if err := s.engine.Restock(ctx, d.NormalizedKey, d.Deducted, d.BaseUnit); err != nil {
			return err
		}
	}

	if err := s.store.DeletePlanEntry(ctx, entryID); err != nil {
		return err
	}
	zap.L().Info("meal unplanned", zap.String("entry_id", entryID))
	return nil
}

// Shortfalls aggregates uncovered need per ingredient key over an inclusive
// date range, ordered by key then base unit.
func (s *Service) Shortfalls(ctx context.Context, from, to string) ([]model.ShoppingItem, error) {
	if _, err := time.Parse(dateLayout, from); err != nil {
		return nil, eris.Wrapf(err, "planner: parse date %q", from)
	}
	if _, err := time.Parse(dateLayout, to); err != nil {
		return nil, eris.Wrapf(err, "planner: parse date %q", to)
	}

	entries, err := s.store.ListPlanEntries(ctx, from, to)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		key  string
		unit string
	}
	totals := make(map[bucket]float64)
	for _, e := range entries {
		for _, d := range e.Deductions {
			if short := d.Shortfall(); short > 0 {
				totals[bucket{d.NormalizedKey, d.BaseUnit}] += short
			}
		}
	}

	items := make([]model.ShoppingItem, 0, len(totals))
	for b, qty := range totals {
		items = append(items, model.ShoppingItem{
			NormalizedKey: b.key,
			BaseUnit:      b.unit,
			Quantity:      qty,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].NormalizedKey != items[j].NormalizedKey {
			return items[i].NormalizedKey < items[j].NormalizedKey
		}
		return items[i].BaseUnit < items[j].BaseUnit
	})
	return items, nil
}

// baseNeed converts an ingredient's scaled quantity to its family base unit.
// Records without a numeric quantity, without a key, or whose unit cannot be
// resolved to a family stay in the recipe but take no part in pantry
// arithmetic.
func baseNeed(ing model.IngredientRecord, scale float64) (float64, string, bool) {
	if !ing.HasQuantity() || ing.NormalizedKey == "" {
		return 0, "", false
	}
	unit := units.Canonical(ing.Unit)
	_, base := units.FamilyOf(unit)
	qty, ok := units.ToBase(*ing.QuantityNumber*scale, unit)
	if !ok || qty <= 0 {
		return 0, "", false
	}
	return qty, base, true
}
