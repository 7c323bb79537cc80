// Package pantry deducts and restores stock as meals are planned and
// unplanned. All arithmetic happens in a required base unit and every write
// preserves the unit the user originally entered.
package pantry

import (
	"regexp"
	"strings"

	"github.com/hearthside/mealplan/internal/ingredient"
)

// ParsedQuantity is the structured reading of a pantry display string such
// as "1 1/2 cups" or "2 cans". Number is nil and Unit empty when the text
// has no leading quantity or no unit token.
type ParsedQuantity struct {
	Number *float64
	Unit   string
	Raw    string
}

// Pantry quantity text is manual entry, so the grammar is deliberately
// smaller than the ingredient line parser's: one leading quantity, no
// ranges, first remaining token is the unit.
var qtyTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\s+\d+\s*/\s*\d+`), // mixed fraction
	regexp.MustCompile(`^\d+\s*/\s*\d+`),       // simple fraction
	regexp.MustCompile(`^\d+(?:\.\d+)?`),       // decimal or integer
}

// ParseQuantityText parses a persisted pantry display string into quantity
// and unit. Both may be absent; no input shape is an error.
func ParseQuantityText(text string) ParsedQuantity {
	pq := ParsedQuantity{Raw: text}
	s := strings.TrimSpace(text)
	if s == "" {
		return pq
	}

	matched := false
	for _, re := range qtyTextPatterns {
		m := re.FindString(s)
		if m == "" {
			continue
		}
		if n, ok := ingredient.ParseNumber(m); ok {
			v := n
			pq.Number = &v
		}
		s = strings.TrimSpace(s[len(m):])
		matched = true
		break
	}
	if !matched {
		return pq
	}

	if fields := strings.Fields(s); len(fields) > 0 {
		pq.Unit = strings.TrimRight(fields[0], ".,;:!?")
	}
	return pq
}
