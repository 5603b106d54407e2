package normalize

import (
	"sort"
	"strings"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

// interrogatives lists question openers per language, in key form.
var interrogatives = map[string][]string{
	"en": {"what", "why", "how", "when", "where", "who", "whom", "whose", "which", "can", "could", "do", "does", "did", "is", "are", "should", "will", "would"},
	"de": {"was", "warum", "wie", "wann", "wo", "woher", "wohin", "wer", "wen", "wem", "welche", "welcher", "welches", "wieso", "weshalb", "kann", "ist", "sind"},
	"fr": {"quoi", "pourquoi", "comment", "quand", "ou", "qui", "quel", "quelle", "quels", "quelles", "que", "combien", "est-ce"},
	"es": {"que", "como", "cuando", "donde", "quien", "quienes", "cual", "cuales", "cuanto", "cuanta", "porque"},
	"it": {"che", "cosa", "perche", "come", "quando", "dove", "chi", "quale", "quali", "quanto", "quanta"},
	"pt": {"que", "como", "quando", "onde", "quem", "qual", "quais", "quanto", "quanta", "porque"},
	"nl": {"wat", "waarom", "hoe", "wanneer", "waar", "wie", "welke", "welk", "kan", "is"},
}

var questionWords = func() map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(interrogatives))
	for lang, words := range interrogatives {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[w] = struct{}{}
		}
		out[lang] = set
	}
	return out
}()

// IsQuestion reports whether keyword reads as a question in language. Unknown
// languages use the English table.
func IsQuestion(keyword, language string) bool {
	key := Key(keyword)
	if strings.HasSuffix(key, "?") {
		return true
	}
	words, ok := questionWords[language]
	if !ok {
		words = questionWords["en"]
	}
	first := key
	if i := strings.IndexByte(key, ' '); i >= 0 {
		first = key[:i]
	}
	_, hit := words[first]
	return hit
}

// Categorize groups merged suggestions by caller-facing category. Questions
// go to related-questions; everything else takes the category of its first
// provider. Within a category, entries with more sources come first, then
// lower rank hints, then merge order. Every known category is present.
func Categorize(merged []suggest.NormalizedSuggestion, language string, categoryOf func(suggest.ProviderID) suggest.Category) map[suggest.Category][]suggest.NormalizedSuggestion {
	out := make(map[suggest.Category][]suggest.NormalizedSuggestion, len(suggest.Categories))
	for _, c := range suggest.Categories {
		out[c] = []suggest.NormalizedSuggestion{}
	}
	for _, s := range merged {
		cat := suggest.CategoryGeneral
		if IsQuestion(s.Keyword, language) {
			cat = suggest.CategoryQuestions
		} else if categoryOf != nil {
			if c := categoryOf(s.FirstSeenProvider); c != "" {
				cat = c
			}
		}
		out[cat] = append(out[cat], s)
	}
	for _, list := range out {
		sort.SliceStable(list, func(i, j int) bool {
			if a, b := len(list[i].Sources), len(list[j].Sources); a != b {
				return a > b
			}
			return list[i].RankHint < list[j].RankHint
		})
	}
	return out
}
