package model

import "time"

// PlanEntry assigns a recipe to a date and meal slot. Deductions records, per
// ingredient, what the pantry engine actually removed when the entry was
// created; unplanning restocks exactly these amounts.
type PlanEntry struct {
	ID         string      `json:"id"`
	RecipeID   string      `json:"recipe_id"`
	Date       string      `json:"date"` // YYYY-MM-DD
	Slot       MealSlot    `json:"slot"`
	Servings   int         `json:"servings"`
	Deductions []Deduction `json:"deductions,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Deduction is the pantry outcome for one ingredient of a planned meal.
// Needed and Deducted are expressed in BaseUnit; Deducted < Needed means the
// pantry ran short, which is a normal reportable outcome rather than an
// error.
type Deduction struct {
	NormalizedKey string  `json:"normalized_key"`
	BaseUnit      string  `json:"base_unit"`
	Needed        float64 `json:"needed"`
	Deducted      float64 `json:"deducted"`
}

// Shortfall reports how much of Needed could not be covered.
func (d Deduction) Shortfall() float64 {
	if s := d.Needed - d.Deducted; s > 0 {
		return s
	}
	return 0
}

// ShoppingItem is one aggregated shortfall line across a plan range.
type ShoppingItem struct {
	NormalizedKey string  `json:"normalized_key"`
	BaseUnit      string  `json:"base_unit"`
	Quantity      float64 `json:"quantity"`
}

// DateRange bounds a plan query, inclusive on both ends.
type DateRange struct {
	From time.Time
	To   time.Time
}
