package dataprocessing

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripAccents decomposes s and drops the combining marks, so "Ñandú" becomes "Nandu".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldName is the comparison form of a client name: accent-free, lowercase, trimmed.
func FoldName(s string) string {
	return strings.TrimSpace(strings.ToLower(StripAccents(s)))
}

// foldHeader collapses a column header to an alias key by folding and
// dropping separators, so "Código Cliente" and "codigo_cliente" agree.
func foldHeader(s string) string {
	folded := FoldName(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TitleCase capitalizes the first letter of every word.
// Casers keep state, so each call builds its own.
func TitleCase(s string) string {
	return cases.Title(language.Spanish).String(s)
}
