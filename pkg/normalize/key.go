// Package normalize merges raw provider output into deduplicated,
// categorized suggestions.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters with a stroke or ligature have no canonical decomposition, so
// stripping marks leaves them alone. Applied after case folding.
var baseLetters = strings.NewReplacer(
	"ł", "l",
	"ø", "o",
	"đ", "d",
	"ð", "d",
	"ħ", "h",
	"ı", "i",
	"ŧ", "t",
	"æ", "ae",
	"œ", "oe",
	"þ", "th",
)

// Key returns the comparison form of s: diacritics stripped, case folded,
// whitespace trimmed and collapsed. Two suggestions are duplicates exactly
// when their keys are equal.
func Key(s string) string {
	// transformers carry state, so build a fresh chain per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := baseLetters.Replace(cases.Fold().String(stripped))
	return strings.Join(strings.Fields(folded), " ")
}
