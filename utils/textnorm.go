package utils

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics folds accented characters to their ASCII base ("Á" → "A",
// "ñ" → "n") via NFKD decomposition and discards anything that still falls
// outside ASCII. The transformer chain is stateful, so it is built per call
// rather than shared; scoring workers fold text concurrently.
func StripDiacritics(s string) string {
	asciiFold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		folded = s
	}
	out := make([]rune, 0, len(folded))
	for _, r := range folded {
		if r < 128 {
			out = append(out, r)
		}
	}
	return string(out)
}
