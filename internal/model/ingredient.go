package model

// IngredientRecord is the structured form of one free-text ingredient line.
// Records are immutable: a re-parse fully replaces the record, it is never
// patched field by field.
type IngredientRecord struct {
	RawText        string   `json:"raw_text"`
	DisplayName    string   `json:"display_name"`
	NormalizedKey  string   `json:"normalized_key"`
	QuantityNumber *float64 `json:"quantity_number,omitempty"`
	QuantityText   string   `json:"quantity_text,omitempty"`
	Unit           string   `json:"unit,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// UnknownIngredientKey is the sentinel NormalizedKey assigned when every
// extraction pass fails. Parsing guarantees a non-empty key for non-empty
// input, so pantry matching always has something to join on.
const UnknownIngredientKey = "unknown ingredient"

// HasQuantity reports whether a numeric quantity was extracted.
func (r *IngredientRecord) HasQuantity() bool {
	return r.QuantityNumber != nil
}
