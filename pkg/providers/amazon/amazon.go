// Package amazon queries the Amazon search completion API of the
// marketplace resolved for the request country.
package amazon

import (
	"context"
	"net/url"
	"strings"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	ID     suggest.ProviderID = "amazon"
	Family                    = "amazon"
	// DefaultBaseURL is expanded with the completion host of the marketplace.
	DefaultBaseURL = "https://{host}/api/2017/suggestions"
)

type Adapter struct {
	client  *providers.Client
	BaseURL string
}

func New(c *providers.Client) *Adapter { return &Adapter{client: c, BaseURL: DefaultBaseURL} }

func (a *Adapter) ID() suggest.ProviderID     { return ID }
func (a *Adapter) Family() string             { return Family }
func (a *Adapter) Category() suggest.Category { return suggest.CategoryMarketplace }

// completionHost maps a storefront host such as www.amazon.de to its
// completion host.
func completionHost(storefront string) string {
	return "completion." + strings.TrimPrefix(storefront, "www.")
}

func (a *Adapter) Fetch(ctx context.Context, q providers.Query) ([]string, error) {
	market, err := providers.MarketOf(ID, q)
	if err != nil {
		return nil, err
	}
	params := url.Values{
		"page-type":       {"Search"},
		"client-info":     {"amazon-search-ui"},
		"limit":           {"15"},
		"mid":             {market.Entry.MarketplaceID},
		"alias":           {"aps"},
		"suggestion-type": {"KEYWORD"},
		"prefix":          {q.Keyword},
	}
	base := providers.Expand(a.BaseURL, map[string]string{"host": completionHost(market.Entry.Host)})
	body, err := a.client.Get(ctx, ID, providers.WithQuery(base, params),
		providers.Header{Name: "Accept-Language", Value: q.Locale("-")})
	if err != nil {
		return nil, err
	}
	return providers.Strings(ID, body, "suggestions.#.value")
}
