package decks

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SanitizeFileName turns a deck name into a filesystem-safe file stem:
// title-cased, whitespace removed, and every character that is not a
// letter, digit or underscore dropped. "fire & ice!" becomes "FireIce".
func SanitizeFileName(name string) string {
	// Casers hold state; one per call keeps this safe for concurrent use.
	titled := cases.Title(language.Und).String(name)

	var b strings.Builder
	b.Grow(len(titled))
	for _, r := range titled {
		if isWordRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
