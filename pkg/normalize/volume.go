package normalize

import (
	"hash/fnv"
	"math"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

// EstimateVolume is a heuristic monthly search volume. It decays with rank,
// grows with the number of agreeing providers and carries a stable per-key
// jitter so equal inputs always give equal numbers. It is not a measurement.
func EstimateVolume(s suggest.NormalizedSuggestion) int {
	base := math.Max(150, 1200/float64(s.RankHint+1))
	sources := len(s.Sources)
	if sources < 1 {
		sources = 1
	}
	boost := 1 + 0.35*float64(sources-1)
	jitter := 0.85 + 0.3*stableFloat(s.Key)
	return int(math.Round(base * boost * jitter))
}

// AssignVolumes fills EstimatedVolume in place and returns the summary.
func AssignVolumes(list []suggest.NormalizedSuggestion) suggest.Summary {
	var sum suggest.Summary
	for i := range list {
		list[i].EstimatedVolume = EstimateVolume(list[i])
		sum.TotalKeywords++
		sum.TotalEstimatedVolume += list[i].EstimatedVolume
	}
	return sum
}

// stableFloat maps s to [0,1) deterministically.
func stableFloat(s string) float64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return float64(h.Sum64()%10000) / 10000
}
