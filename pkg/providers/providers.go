// Package providers defines the adapter contract every upstream suggestion
// source implements, plus the shared HTTP client and parsing helpers.
package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/sw33tLie/kwscope/pkg/locale"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

// Query is the locale-shaped input of one adapter call.
type Query struct {
	Keyword  string
	Language string
	Country  string
	// Market is set for adapters with a marketplace family.
	Market *locale.Resolution
}

// Locale returns the query as an ll-CC locale, e.g. en-US.
func (q Query) Locale(sep string) string {
	return q.Language + sep + q.Country
}

// Adapter translates one upstream's request and response shape. Fetch
// performs exactly one network call and never retries; an empty slice is a
// valid outcome. Adapters hold no mutable state shared with other adapters.
type Adapter interface {
	ID() suggest.ProviderID
	// Family is the marketplace family the adapter resolves countries
	// against, or "" when it takes plain language/country codes.
	Family() string
	Category() suggest.Category
	Fetch(ctx context.Context, q Query) ([]string, error)
}

// Run calls a once and packages the outcome as a ProviderResult.
func Run(ctx context.Context, a Adapter, q Query) suggest.ProviderResult {
	started := time.Now()
	items, err := a.Fetch(ctx, q)
	res := suggest.ProviderResult{
		Provider: a.ID(),
		Latency:  time.Since(started),
	}
	if err != nil {
		res.Error = KindOf(err)
		res.Cause = err
		return res
	}
	if items == nil {
		items = []string{}
	}
	res.RawItems = items
	return res
}

// MarketOf returns the resolved marketplace of q, or an Unsupported error
// when the dispatcher could not resolve one.
func MarketOf(id suggest.ProviderID, q Query) (locale.Resolution, error) {
	if q.Market == nil {
		return locale.Resolution{}, Unsupported(id, "no marketplace for country %s", q.Country)
	}
	if q.Market.Entry.MarketplaceID == "" {
		return locale.Resolution{}, Unsupported(id, "marketplace for %s has no id", q.Country)
	}
	return *q.Market, nil
}

// String identifies the query in logs.
func (q Query) String() string {
	return fmt.Sprintf("%q %s-%s", q.Keyword, q.Language, q.Country)
}
