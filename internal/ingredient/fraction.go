package ingredient

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	mixedRe  = regexp.MustCompile(`^(\d+)\s+(\d+)\s*/\s*(\d+)$`)
	simpleRe = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)
)

// ParseNumber resolves a quantity string to a float. Accepts, in order:
// mixed fractions ("1 1/2"), simple fractions ("1/2"), and plain decimals
// ("1", "1.5"). Returns false for anything else, including zero
// denominators; it never panics on garbage input.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if m := mixedRe.FindStringSubmatch(s); m != nil {
		whole, _ := strconv.ParseFloat(m[1], 64)
		num, _ := strconv.ParseFloat(m[2], 64)
		den, _ := strconv.ParseFloat(m[3], 64)
		if den == 0 {
			return 0, false
		}
		return whole + num/den, true
	}

	if m := simpleRe.FindStringSubmatch(s); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den == 0 {
			return 0, false
		}
		return num / den, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
