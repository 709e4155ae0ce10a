// Package tokenizer provides text tokenisation for the inverted index.
// It lower-cases input and splits on maximal runs of non-word characters.
// There is no stemming and no stop-word removal: build-time and query-time
// normalisation must agree exactly, and the simplest normalisation is the
// easiest to keep in agreement.
package tokenizer

import (
	"iter"
	"strings"
	"unicode"
)

// IsSeparator reports whether r ends a token. Word characters are letters,
// digits, and underscore; every other rune separates tokens.
func IsSeparator(r rune) bool {
	return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Tokenize returns a lazy sequence of the lower-cased tokens in text.
// The sequence is finite and restartable: ranging over it twice yields the
// same tokens. Empty tokens are never produced.
func Tokenize(text string) iter.Seq[string] {
	return strings.FieldsFuncSeq(strings.ToLower(text), IsSeparator)
}

// Normalize reduces a query term to the same form Tokenize produces at
// build time. It returns the first token of term, or "" when term contains
// no word characters at all.
func Normalize(term string) string {
	for token := range Tokenize(term) {
		return token
	}
	return ""
}
