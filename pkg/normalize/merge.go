package normalize

import (
	"sort"
	"strings"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

// Normalizer merges provider results in a fixed priority order. The order is
// injected at construction so output is reproducible per instance.
type Normalizer struct {
	priority map[suggest.ProviderID]int
}

// New builds a Normalizer. Providers missing from priority are merged after
// the listed ones, in lexical order.
func New(priority []suggest.ProviderID) *Normalizer {
	n := &Normalizer{priority: make(map[suggest.ProviderID]int, len(priority))}
	for i, id := range priority {
		if _, dup := n.priority[id]; !dup {
			n.priority[id] = i
		}
	}
	return n
}

func (n *Normalizer) less(a, b suggest.ProviderID) bool {
	pa, oka := n.priority[a]
	pb, okb := n.priority[b]
	switch {
	case oka && okb:
		return pa < pb
	case oka != okb:
		return oka
	default:
		return a < b
	}
}

// Order returns a copy of results sorted by provider priority.
func (n *Normalizer) Order(results []suggest.ProviderResult) []suggest.ProviderResult {
	out := append([]suggest.ProviderResult(nil), results...)
	sort.SliceStable(out, func(i, j int) bool { return n.less(out[i].Provider, out[j].Provider) })
	return out
}

// Merge deduplicates the successful results into one ordered list. The first
// provider in priority order to return a key owns its display casing and
// rank hint; later providers only join its sources. Failed results are
// ignored.
func (n *Normalizer) Merge(results []suggest.ProviderResult) []suggest.NormalizedSuggestion {
	var out []suggest.NormalizedSuggestion
	index := make(map[string]int)
	for _, res := range n.Order(results) {
		if !res.OK() {
			continue
		}
		for rank, raw := range res.RawItems {
			key := Key(raw)
			if key == "" {
				continue
			}
			if i, seen := index[key]; seen {
				out[i].Sources[res.Provider] = struct{}{}
				continue
			}
			index[key] = len(out)
			out = append(out, suggest.NormalizedSuggestion{
				Keyword:           collapse(raw),
				Key:               key,
				Sources:           suggest.NewProviderSet(res.Provider),
				FirstSeenProvider: res.Provider,
				RankHint:          rank,
			})
		}
	}
	if out == nil {
		out = []suggest.NormalizedSuggestion{}
	}
	return out
}

func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }
