package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letterReplacer covers letters without a canonical decomposition.
var letterReplacer = strings.NewReplacer(
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
	"ł", "l",
	"đ", "d",
	"ð", "d",
	"þ", "th",
	"ı", "i",
	"ß", "ss",
)

// Fold returns an accent-insensitive, lowercase form of value with
// surrounding and repeated whitespace collapsed.
func Fold(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	chain := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		cases.Fold(),
		norm.NFC,
	)
	folded, _, err := transform.String(chain, value)
	if err != nil {
		folded = strings.ToLower(value)
	}
	folded = letterReplacer.Replace(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// ContainsFolded reports whether needle appears in haystack after folding
// both sides.
func ContainsFolded(haystack, needle string) bool {
	needle = Fold(needle)
	if needle == "" {
		return false
	}
	return strings.Contains(Fold(haystack), needle)
}
