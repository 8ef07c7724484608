// Package textnorm folds free text for keyword matching.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips diacritics and collapses whitespace, so
// "Côte d'Ivoire" and "cote d'ivoire" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	res, _, err := transform.String(t, s)
	if err != nil {
		res = s
	}
	return strings.Join(strings.Fields(strings.ToLower(res)), " ")
}

// ContainsWord reports whether folded text contains term on word boundaries.
// Both arguments must already be folded.
func ContainsWord(text, term string) bool {
	if term == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(text[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		before, _ := utf8.DecodeLastRuneInString(text[:i])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if boundary(before) && boundary(after) {
			return true
		}
		start = i + 1
	}
}

// boundary reports whether r separates words. utf8.RuneError marks the
// start or end of the text.
func boundary(r rune) bool {
	if r == utf8.RuneError {
		return true
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
