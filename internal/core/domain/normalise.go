package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalise canonicalises free text for identity comparison. It
// lowercases, folds diacritics onto their base letters, strips
// punctuation and collapses whitespace runs to single spaces.
//
// The same function serves titles and venues. It is pure and total:
// empty input yields an empty result and equal inputs always yield
// equal outputs regardless of which source produced them — that
// determinism is what lets independently-scraped spellings such as
// "Arditodesìo" and "arditodesio" collide.
func Normalise(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))

	// Decompose so accents become combining marks, then drop the marks.
	decomposed := norm.NFD.String(lowered)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// Combining mark left over from decomposition.
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// Punctuation carries no semantic weight for identity.
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
