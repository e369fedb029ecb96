package matching

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases text and splits it on every rune that is not a letter or digit.
func Tokenize(text string) Set {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return NewSet(fields...)
}

// LexicalOverlap is the Jaccard similarity of the token sets of a and b.
func LexicalOverlap(a, b string) float64 {
	return Jaccard(Tokenize(a), Tokenize(b))
}
