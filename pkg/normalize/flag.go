package normalize

import (
	"strings"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

// FlaggedTerms are phrases marketplaces commonly reject in listings.
var FlaggedTerms = []string{"free", "best seller", "discount", "cheap", "guaranteed"}

// Flag returns the keywords that contain a flagged term as whole words, in
// input order.
func Flag(list []suggest.NormalizedSuggestion) []string {
	var out []string
	for _, s := range list {
		padded := " " + s.Key + " "
		for _, term := range FlaggedTerms {
			if strings.Contains(padded, " "+term+" ") {
				out = append(out, s.Keyword)
				break
			}
		}
	}
	return out
}
