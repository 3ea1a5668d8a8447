package textutil

import (
	"strings"
	"unicode"
)

// Tokenize folds text and splits it into letter/digit runs. Tokens shorter
// than minLen runes are dropped.
func Tokenize(text string, minLen int) []string {
	raw := strings.FieldsFunc(Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len([]rune(token)) < minLen {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}
