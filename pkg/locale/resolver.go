// Package locale maps countries to the marketplace identifiers that
// marketplace-backed adapters need, including single-hop fallbacks for
// countries without their own marketplace.
package locale

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

// ErrNotSupported means the family has no marketplace for the country. It is
// a skip decision, not a failure.
var ErrNotSupported = errors.New("marketplace not supported")

// Entry is the effective marketplace for a country. On a fallback
// resolution Country stays the requested one while Host and MarketplaceID
// are those of the marketplace standing in for it.
type Entry struct {
	Country       string `json:"country"`
	Host          string `json:"host"`
	MarketplaceID string `json:"marketplace_id"`
}

// Resolution is the result of resolving one (family, country) pair.
type Resolution struct {
	Family      string `json:"family"`
	Requested   string `json:"requested"`
	Entry       Entry  `json:"entry"`
	ViaFallback bool   `json:"via_fallback"`
	// ServedBy is the country whose marketplace serves a fallback resolution.
	ServedBy string `json:"served_by,omitempty"`
}

// Resolver answers marketplace lookups. Resolutions are computed once at
// construction; lookups are read-only and safe for concurrent use.
type Resolver struct {
	resolved map[string]map[string]Resolution
	problems []error
}

// New compiles t. Rows that cannot resolve (incomplete, cyclic, multi-hop)
// are dropped and reported by Problems.
func New(t Table) *Resolver {
	r := &Resolver{resolved: make(map[string]map[string]Resolution, len(t))}
	for _, family := range t.Families() {
		entries, problems := t.compile(family)
		r.resolved[family] = entries
		r.problems = append(r.problems, problems...)
	}
	return r
}

// Problems lists the rows dropped while compiling the table.
func (r *Resolver) Problems() []error {
	return append([]error(nil), r.problems...)
}

// Resolve returns the effective marketplace of family for country.
func (r *Resolver) Resolve(family, country string) (Resolution, error) {
	code, err := suggest.NormalizeCountry(country)
	if err != nil {
		return Resolution{}, err
	}
	entries, ok := r.resolved[family]
	if !ok {
		return Resolution{}, fmt.Errorf("%w: unknown family %q", ErrNotSupported, family)
	}
	res, ok := entries[code]
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %s has no marketplace for %s", ErrNotSupported, family, code)
	}
	return res, nil
}

// Families returns the configured family names.
func (r *Resolver) Families() []string {
	out := make([]string, 0, len(r.resolved))
	for f := range r.resolved {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Resolutions returns every resolvable country of family, sorted by country.
func (r *Resolver) Resolutions(family string) []Resolution {
	entries := r.resolved[family]
	out := make([]Resolution, 0, len(entries))
	for _, res := range entries {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Requested < out[j].Requested })
	return out
}

// Default returns a resolver over the embedded table. It panics if the
// embedded table does not parse.
func Default() *Resolver {
	t, err := DefaultTable()
	if err != nil {
		panic(err)
	}
	return New(t)
}
