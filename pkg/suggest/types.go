// Package suggest holds the data model shared by the aggregator: requests,
// per-provider results, normalized suggestions and the aggregated response.
package suggest

import (
	"sort"
	"time"
)

// ProviderID names one upstream suggestion source.
type ProviderID string

// ProviderSet is an unordered set of provider ids.
type ProviderSet map[ProviderID]struct{}

// NewProviderSet builds a set from ids, ignoring empty values.
func NewProviderSet(ids ...ProviderID) ProviderSet {
	s := make(ProviderSet, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s ProviderSet) Has(id ProviderID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s ProviderSet) Sorted() []ProviderID {
	out := make([]ProviderID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarshalJSON renders the set as a sorted list.
func (s ProviderSet) MarshalJSON() ([]byte, error) {
	return marshalIDs(s.Sorted())
}

// Category is a caller-facing grouping label, independent of which
// adapters contributed.
type Category string

const (
	CategoryGeneral     Category = "general-suggestions"
	CategoryQuestions   Category = "related-questions"
	CategoryTrends      Category = "trend-related"
	CategoryReference   Category = "reference-terms"
	CategoryMarketplace Category = "marketplace-terms"
	CategoryApps        Category = "app-terms"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryGeneral,
	CategoryQuestions,
	CategoryTrends,
	CategoryReference,
	CategoryMarketplace,
	CategoryApps,
}

// Request is one suggestion request. It is not mutated once dispatched.
type Request struct {
	Keyword   string       `json:"keyword"`
	Language  string       `json:"language"`
	Country   string       `json:"country"`
	Providers []ProviderID `json:"providers,omitempty"`

	// WithDifficulty asks for a difficulty score of the seed keyword.
	WithDifficulty bool `json:"with_difficulty,omitempty"`
}

// ProviderResult is the transient outcome of one adapter call.
type ProviderResult struct {
	Provider ProviderID    `json:"provider"`
	RawItems []string      `json:"raw_items"`
	Latency  time.Duration `json:"-"`
	Error    ErrorKind     `json:"error,omitempty"`

	// Cause is the underlying error, kept for logs only.
	Cause error `json:"-"`
}

// LatencyMS is the call latency in whole milliseconds.
func (r ProviderResult) LatencyMS() int64 { return r.Latency.Milliseconds() }

// OK reports whether the call completed without error. An empty item list
// is a valid outcome.
func (r ProviderResult) OK() bool { return r.Error == "" }

// Clone returns a copy that shares no mutable state with r.
func (r ProviderResult) Clone() ProviderResult {
	c := r
	if r.RawItems != nil {
		c.RawItems = append([]string(nil), r.RawItems...)
	}
	return c
}

// NormalizedSuggestion is one merged suggestion. Keyword keeps the casing
// of the first provider that returned it.
type NormalizedSuggestion struct {
	Keyword           string      `json:"keyword"`
	Key               string      `json:"-"`
	Sources           ProviderSet `json:"sources"`
	FirstSeenProvider ProviderID  `json:"first_seen_provider"`
	RankHint          int         `json:"rank_hint"`
	EstimatedVolume   int         `json:"estimated_volume"`
}

// Competition is a coarse competition bucket.
type Competition string

const (
	CompetitionLow    Competition = "low"
	CompetitionMedium Competition = "medium"
	CompetitionHigh   Competition = "high"
)

// Signals are the competitive signals a difficulty score was derived from.
type Signals struct {
	BrandPresence        bool        `json:"brand_presence"`
	RichFeatures         []string    `json:"rich_features"`
	EstimatedCompetition Competition `json:"estimated_competition"`
}

// DifficultyScore is a bounded 0..100 score with its reasoning.
type DifficultyScore struct {
	Value     int      `json:"value"`
	Reasoning []string `json:"reasoning"`
	Signals   Signals  `json:"signals"`
}

// Summary totals an aggregated response.
type Summary struct {
	TotalKeywords        int `json:"total_keywords"`
	TotalEstimatedVolume int `json:"total_estimated_volume"`
}

// ProviderStatus values.
const (
	StatusOK      = "ok"
	StatusCached  = "cached"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// ProviderStatus reports what happened to one provider in a request.
type ProviderStatus struct {
	Provider      ProviderID `json:"provider"`
	Status        string     `json:"status"`
	Error         ErrorKind  `json:"error,omitempty"`
	LatencyMS     int64      `json:"latency_ms"`
	Items         int        `json:"items"`
	MarketplaceID string     `json:"marketplace_id,omitempty"`
	ViaFallback   bool       `json:"via_fallback,omitempty"`
}

// Metadata describes provider participation in a response.
type Metadata struct {
	RequestID   string           `json:"request_id"`
	Providers   []ProviderStatus `json:"providers"`
	ViaFallback bool             `json:"via_fallback"`
	Partial     bool             `json:"partial"`
	ElapsedMS   int64            `json:"elapsed_ms"`
}

// Succeeded returns the providers that produced data.
func (m Metadata) Succeeded() []ProviderID {
	var out []ProviderID
	for _, p := range m.Providers {
		if p.Status == StatusOK || p.Status == StatusCached {
			out = append(out, p.Provider)
		}
	}
	return out
}

// AggregatedResponse is built fresh per request and not mutated after it is
// returned.
type AggregatedResponse struct {
	Keyword    string                              `json:"keyword"`
	Language   string                              `json:"language"`
	Country    string                              `json:"country"`
	Categories map[Category][]NormalizedSuggestion `json:"categories"`
	Difficulty *DifficultyScore                    `json:"difficulty,omitempty"`
	Summary    Summary                             `json:"summary"`
	Flagged    []string                            `json:"flagged,omitempty"`
	Metadata   Metadata                            `json:"metadata"`
}
