// Package ebay queries eBay's autosuggest service for the site resolved
// from the request country.
package ebay

import (
	"context"
	"net/url"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	ID             suggest.ProviderID = "ebay"
	Family                            = "ebay"
	DefaultBaseURL                    = "https://autosug.ebay.com/autosug"
)

type Adapter struct {
	client  *providers.Client
	BaseURL string
}

func New(c *providers.Client) *Adapter { return &Adapter{client: c, BaseURL: DefaultBaseURL} }

func (a *Adapter) ID() suggest.ProviderID     { return ID }
func (a *Adapter) Family() string             { return Family }
func (a *Adapter) Category() suggest.Category { return suggest.CategoryMarketplace }

func (a *Adapter) Fetch(ctx context.Context, q providers.Query) ([]string, error) {
	market, err := providers.MarketOf(ID, q)
	if err != nil {
		return nil, err
	}
	params := url.Values{
		"kwd":  {q.Keyword},
		"sId":  {market.Entry.MarketplaceID},
		"_jgr": {"1"},
		"_ch":  {"0"},
	}
	body, err := a.client.Get(ctx, ID, providers.WithQuery(a.BaseURL, params))
	if err != nil {
		return nil, err
	}
	// res is omitted when eBay has nothing to suggest
	return providers.StringsOrEmpty(ID, body, "res.sug")
}
