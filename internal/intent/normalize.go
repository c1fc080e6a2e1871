package intent

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes to NFD, removes combining diacritical marks, and
// recomposes. Unicode's Diacritic property (rather than the whole Mn
// category) mirrors what diacritic-insensitive matching needs: "café" folds
// to "cafe" while Devanagari and Kannada vowel signs survive intact.
var stripDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Diacritic)),
	norm.NFC,
)

// Normalize canonicalizes a transcript for keyword matching: Unicode
// lower-casing, diacritic stripping, removal of a fixed punctuation set, and
// whitespace collapse. It is idempotent, so keywords and utterances can be
// passed through it independently and still compare equal.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(stripDiacritics, s); err == nil {
		s = folded
	}
	s = strings.Map(dropPunct, s)
	return strings.Join(strings.Fields(s), " ")
}

// dropPunct removes the punctuation characters the matcher ignores.
func dropPunct(r rune) rune {
	switch r {
	case '.', ',', '!', '?', ';', ':', '/', '\\', '(', ')', '[', ']', '"', '\'', '`':
		return -1
	}
	return r
}
