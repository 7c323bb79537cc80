package ingredient

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hearthside/mealplan/internal/model"
	"github.com/hearthside/mealplan/internal/units"
)

// quantityPattern is one leading-quantity matching strategy. Strategies are
// pure and independent; ParseLine tries them in priority order and takes the
// first hit, so a mixed fraction is never half-consumed by the decimal rule.
type quantityPattern struct {
	name string
	re   *regexp.Regexp
}

var quantityPatterns = []quantityPattern{
	{"mixed-fraction", regexp.MustCompile(`^\d+\s+\d+\s*/\s*\d+`)},
	{"simple-fraction", regexp.MustCompile(`^\d+\s*/\s*\d+`)},
	{"decimal", regexp.MustCompile(`^\d+(?:\.\d+)?`)},
}

// rangeSepRe separates the two ends of a quantity range ("1 to 2", "2-3").
var rangeSepRe = regexp.MustCompile(`^\s*(?:to\s+|-)\s*`)

var (
	parenRe     = regexp.MustCompile(`\(([^()]*)\)`)
	leadParenRe = regexp.MustCompile(`^\(([^()]*)\)\s*`)
	dashNoteRe  = regexp.MustCompile(`\s-\s+(.+)$`)
	unitRe      = buildUnitRe()
)

func buildUnitRe() *regexp.Regexp {
	forms := units.SurfaceForms()
	for i, f := range forms {
		forms[i] = regexp.QuoteMeta(f)
	}
	return regexp.MustCompile(`^(?i)(` + strings.Join(forms, "|") + `)\.?,?(?:\s+|$)`)
}

var upperCaser = cases.Upper(language.English)

// ParseLine turns one free-text ingredient line into an IngredientRecord.
// Returns nil for empty or whitespace-only input. It never fails otherwise:
// quantity and unit are left unset when absent, and the normalized key falls
// back through a second aggressive pass that bottoms out at the
// "unknown ingredient" sentinel.
func ParseLine(raw string) *model.IngredientRecord {
	text := NormalizeText(raw)
	if text == "" {
		return nil
	}

	rec := &model.IngredientRecord{RawText: raw}
	rest := text

	// Leading quantity, optionally a range.
	if qtyText, first, remainder, ok := matchLeadingQuantity(rest); ok {
		rec.QuantityText = qtyText
		if n, ok := ParseNumber(first); ok {
			v := n
			rec.QuantityNumber = &v
		}
		rest = strings.TrimSpace(remainder)
	}

	// A parenthetical pack size ("(10.75 oz)") belongs to the quantity, not
	// the name, and must be folded away before unit extraction so its unit
	// word is not mistaken for the primary unit. Only a flat group with a
	// known mass/volume unit word qualifies; nested groups fall through to
	// the notes stripper.
	if m := leadParenRe.FindStringSubmatch(rest); m != nil && containsMeasureWord(m[1]) {
		rec.QuantityText = appendField(rec.QuantityText, "("+strings.TrimSpace(m[1])+")", " ")
		rest = rest[len(m[0]):]
	}

	// Primary unit.
	if m := unitRe.FindStringSubmatch(rest); m != nil {
		rec.Unit = units.Canonical(m[1])
		rec.QuantityText = appendField(rec.QuantityText, m[1], " ")
		rest = strings.TrimSpace(rest[len(m[0]):])
	}

	// Notes: parenthetical groups, then a trailing comma clause, then a
	// trailing " - ..." clause.
	rest, rec.Notes = extractNotes(rest)

	name := cleanName(rest)
	key := normalizeKey(name)

	if !validKey(key) {
		key = fallbackKey(raw)
		name = capitalizeFirst(key)
	}

	rec.DisplayName = name
	rec.NormalizedKey = key
	return rec
}

// matchLeadingQuantity anchors a quantity at the start of s using the
// strategy chain, then optionally extends it across a range separator to a
// second quantity of the same shapes. Returns the full matched text, the
// first quantity alone, and the unconsumed remainder.
func matchLeadingQuantity(s string) (qtyText, first, rest string, ok bool) {
	first = matchOneQuantity(s)
	if first == "" {
		return "", "", s, false
	}
	qtyText = first
	rest = s[len(first):]

	if sep := rangeSepRe.FindString(rest); sep != "" {
		if second := matchOneQuantity(rest[len(sep):]); second != "" {
			qtyText = s[:len(first)+len(sep)+len(second)]
			rest = s[len(qtyText):]
		}
	}
	return qtyText, first, rest, true
}

func matchOneQuantity(s string) string {
	for _, p := range quantityPatterns {
		if m := p.re.FindString(s); m != "" {
			return m
		}
	}
	return ""
}

func containsMeasureWord(s string) bool {
	for _, w := range strings.Fields(s) {
		if units.IsMeasure(w) && units.Known(w) {
			return true
		}
	}
	return false
}

// extractNotes strips note material from the remaining name text and returns
// the stripped name plus the accumulated notes joined by "; ".
func extractNotes(s string) (name, notes string) {
	// All remaining (...) groups, innermost first so nesting peels apart.
	for {
		m := parenRe.FindStringSubmatchIndex(s)
		if m == nil {
			break
		}
		content := strings.TrimSpace(s[m[2]:m[3]])
		if content != "" {
			notes = appendField(notes, content, "; ")
		}
		s = s[:m[0]] + " " + s[m[1]:]
	}

	// Trailing comma clause.
	if i := strings.Index(s, ","); i >= 0 {
		clause := strings.TrimSpace(s[i+1:])
		if clause != "" {
			notes = appendField(notes, clause, "; ")
		}
		s = s[:i]
	}

	// Trailing " - ..." clause.
	if m := dashNoteRe.FindStringSubmatchIndex(s); m != nil {
		clause := strings.TrimSpace(s[m[2]:m[3]])
		if clause != "" {
			notes = appendField(notes, clause, "; ")
		}
		s = s[:m[0]]
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " ")), notes
}

// nameNoise is the punctuation trimmed from both ends of a name. Apostrophes
// are deliberately absent so contractions survive.
const nameNoise = " \t-.,;:*!?&/"

// cleanName trims punctuation noise without damaging contractions, removes a
// stray leading "'s " fragment, and unwraps matched quote pairs.
func cleanName(s string) string {
	s = strings.Trim(s, nameNoise)

	if strings.HasPrefix(s, "'s ") {
		s = strings.TrimSpace(s[3:])
	}

	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			s = strings.Trim(s[1:len(s)-1], nameNoise)
			continue
		}
		break
	}

	return strings.TrimSpace(s)
}

// normalizeKey lowercases a cleaned name, drops residual parentheses, and
// collapses whitespace. This is the join key for pantry matching and
// shopping-list aggregation.
func normalizeKey(name string) string {
	k := strings.ToLower(name)
	k = strings.NewReplacer("(", " ", ")", " ").Replace(k)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(k, " "))
}

// validKey rejects keys that are empty, shorter than two characters, or made
// entirely of non-alphanumeric characters.
func validKey(k string) bool {
	if utf8.RuneCountInString(k) < 2 {
		return false
	}
	for _, r := range k {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// fallbackKey re-derives a key from the original text with a second, more
// aggressive pass. It must produce a usable key for any non-empty input;
// the pantry engine joins on it.
func fallbackKey(raw string) string {
	s := strings.ToLower(NormalizeText(raw))

	// Leading quantity, then either a unit word or a parenthetical size.
	if _, _, rest, ok := matchLeadingQuantity(s); ok {
		rest = strings.TrimSpace(rest)
		if m := leadParenRe.FindString(rest); m != "" {
			rest = strings.TrimSpace(rest[len(m):])
		}
		if m := unitRe.FindString(rest); m != "" {
			rest = strings.TrimSpace(rest[len(m):])
		}
		s = rest
	}

	// Remaining parentheticals, innermost first.
	for parenRe.MatchString(s) {
		s = parenRe.ReplaceAllString(s, " ")
	}

	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}

	s = strings.Trim(s, nameNoise+`'"`)
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if validKey(s) {
		return s
	}

	// Last resort: letters and spaces only.
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || r == ' ' {
			return r
		}
		return -1
	}, s)
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if validKey(s) {
		return s
	}
	return model.UnknownIngredientKey
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return upperCaser.String(s[:size]) + s[size:]
}

func appendField(acc, field, sep string) string {
	if acc == "" {
		return field
	}
	return acc + sep + field
}
