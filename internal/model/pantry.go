package model

import "time"

// PantryRow is one stocked item. QuantityText is always present and is
// authoritative on rows created before the structured columns existed;
// QuantityNumber/Unit mirror it on stores that support them.
type PantryRow struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	NameLower      string    `json:"name_lower"`
	QuantityText   string    `json:"quantity_text"`
	QuantityNumber *float64  `json:"quantity_number,omitempty"`
	Unit           string    `json:"unit,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MatchKey returns the key this row is matched under: NameLower when set,
// otherwise the lowercased trimmed Name (legacy rows).
func (p *PantryRow) MatchKey() string {
	if p.NameLower != "" {
		return p.NameLower
	}
	return lowerTrim(p.Name)
}
