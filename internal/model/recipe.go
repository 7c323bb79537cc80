package model

import (
	"strings"
	"time"
)

// Recipe holds a recipe's parsed ingredient lines. Servings is the yield the
// ingredient quantities were written for; planning at a different yield
// scales quantities proportionally.
type Recipe struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Servings    int                `json:"servings"`
	Ingredients []IngredientRecord `json:"ingredients"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// MealSlot identifies which meal of the day a plan entry fills.
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
	SlotSnack     MealSlot = "snack"
)

// ValidSlot reports whether s is one of the known meal slots.
func ValidSlot(s MealSlot) bool {
	switch s {
	case SlotBreakfast, SlotLunch, SlotDinner, SlotSnack:
		return true
	}
	return false
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
