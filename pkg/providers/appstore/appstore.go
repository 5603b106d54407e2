// Package appstore derives suggestions from iTunes Search app titles in
// the storefront resolved for the request country.
package appstore

import (
	"context"
	"net/url"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	ID     suggest.ProviderID = "app-store"
	Family                    = "app-store"
	// DefaultBaseURL is expanded with the storefront host.
	DefaultBaseURL = "https://{host}/search"
)

type Adapter struct {
	client  *providers.Client
	BaseURL string
}

func New(c *providers.Client) *Adapter { return &Adapter{client: c, BaseURL: DefaultBaseURL} }

func (a *Adapter) ID() suggest.ProviderID     { return ID }
func (a *Adapter) Family() string             { return Family }
func (a *Adapter) Category() suggest.Category { return suggest.CategoryApps }

func (a *Adapter) Fetch(ctx context.Context, q providers.Query) ([]string, error) {
	market, err := providers.MarketOf(ID, q)
	if err != nil {
		return nil, err
	}
	params := url.Values{
		"term":    {q.Keyword},
		"country": {market.Entry.MarketplaceID},
		"entity":  {"software"},
		"limit":   {"15"},
		"lang":    {q.Language + "_" + market.Entry.MarketplaceID},
	}
	base := providers.Expand(a.BaseURL, map[string]string{"host": market.Entry.Host})
	body, err := a.client.Get(ctx, ID, providers.WithQuery(base, params))
	if err != nil {
		return nil, err
	}
	return providers.Strings(ID, body, "results.#.trackName")
}
