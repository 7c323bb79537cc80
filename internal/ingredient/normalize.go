// Package ingredient parses free-text recipe ingredient lines into structured
// records. Input arrives from many unrelated websites, so the package leans
// hard on normalization and never fails on malformed text: every non-empty
// line yields a usable normalized key.
package ingredient

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// entityReplacer decodes the fixed set of HTML entities scraped recipe text
// actually contains. Anything rarer survives as literal text and is cleaned
// up by the name validation fallback.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
)

// punctReplacer rewrites unicode punctuation to ASCII equivalents.
var punctReplacer = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"‒", "-", // figure dash
	"−", "-", // minus sign
	"·", "-", // middle dot
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"‚", "'",
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"„", `"`,
	" ", " ", // non-breaking space
)

// fractionGlyphs maps unicode vulgar fractions to their ASCII spellings.
var fractionGlyphs = map[rune]string{
	'½': "1/2",
	'⅓': "1/3",
	'¼': "1/4",
	'⅔': "2/3",
	'¾': "3/4",
	'⅕': "1/5",
	'⅖': "2/5",
	'⅗': "3/5",
	'⅘': "4/5",
	'⅙': "1/6",
	'⅚': "5/6",
	'⅛': "1/8",
	'⅜': "3/8",
	'⅝': "5/8",
	'⅞': "7/8",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeText decodes HTML entities, rewrites unicode punctuation and
// fraction glyphs to ASCII, and collapses whitespace runs. "1½" becomes
// "1 1/2" so the fraction parser sees a mixed number.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	s = entityReplacer.Replace(s)
	s = punctReplacer.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	prevDigit := false
	for _, r := range s {
		if ascii, ok := fractionGlyphs[r]; ok {
			if prevDigit {
				b.WriteByte(' ')
			}
			b.WriteString(ascii)
			prevDigit = false
			continue
		}
		b.WriteRune(r)
		prevDigit = r >= '0' && r <= '9'
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(b.String(), " "))
}
