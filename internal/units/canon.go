// Package units provides canonical unit tokens, unit families, and exact
// same-family quantity conversion for pantry arithmetic.
package units

import "strings"

// aliases maps every recognized surface spelling to its canonical token.
// Unknown tokens are not an error: they pass through unchanged and behave as
// count-family units of themselves.
var aliases = map[string]string{
	// volume
	"teaspoon":    "tsp",
	"teaspoons":   "tsp",
	"tsp":         "tsp",
	"tsps":        "tsp",
	"t":           "tsp",
	"tablespoon":  "tbsp",
	"tablespoons": "tbsp",
	"tbsp":        "tbsp",
	"tbsps":       "tbsp",
	"tbs":         "tbsp",
	"tbl":         "tbsp",
	"cup":         "cup",
	"cups":        "cup",
	"c":           "cup",

	// metric liquid
	"ml":          "ml",
	"milliliter":  "ml",
	"milliliters": "ml",
	"millilitre":  "ml",
	"millilitres": "ml",
	"l":           "l",
	"liter":       "l",
	"liters":      "l",
	"litre":       "l",
	"litres":      "l",

	// mass
	"g":         "g",
	"gram":      "g",
	"grams":     "g",
	"kg":        "kg",
	"kilogram":  "kg",
	"kilograms": "kg",
	"oz":        "oz",
	"ounce":     "oz",
	"ounces":    "oz",
	"lb":        "lb",
	"lbs":       "lb",
	"pound":     "lb",
	"pounds":    "lb",

	// count
	"clove":    "clove",
	"cloves":   "clove",
	"can":      "can",
	"cans":     "can",
	"jar":      "jar",
	"jars":     "jar",
	"package":  "package",
	"packages": "package",
	"bunch":    "bunch",
	"bunches":  "bunch",
	"slice":    "slice",
	"slices":   "slice",
	"piece":    "piece",
	"pieces":   "piece",
	"whole":    "whole",
	"medium":   "medium",
	"large":    "large",
	"small":    "small",
	"pinch":    "pinch",
	"pinches":  "pinch",
	"dash":     "dash",
	"dashes":   "dash",
}

// tokenPunct is the punctuation stripped from a token before alias lookup.
const tokenPunct = ".,;:()[]{}"

// Canonical maps a unit token to its canonical form. Lowercases, strips
// surrounding punctuation, and resolves aliases and plurals. Unknown tokens
// are returned as cleaned. Idempotent: Canonical(Canonical(u)) == Canonical(u).
func Canonical(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.Map(func(r rune) rune {
		if strings.ContainsRune(tokenPunct, r) {
			return -1
		}
		return r
	}, t)
	if canon, ok := aliases[t]; ok {
		return canon
	}
	return t
}

// Known reports whether token resolves to a unit in the alias table.
func Known(token string) bool {
	t := Canonical(token)
	_, ok := aliases[t]
	return ok
}
