// Package yahoo queries Yahoo's gossip suggestion service.
package yahoo

import (
	"context"
	"net/url"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	ID             suggest.ProviderID = "yahoo"
	DefaultBaseURL                    = "https://search.yahoo.com/sugg/gossip/gossip-us-ura/"
)

type Adapter struct {
	client  *providers.Client
	BaseURL string
}

func New(c *providers.Client) *Adapter { return &Adapter{client: c, BaseURL: DefaultBaseURL} }

func (a *Adapter) ID() suggest.ProviderID     { return ID }
func (a *Adapter) Family() string             { return "" }
func (a *Adapter) Category() suggest.Category { return suggest.CategoryGeneral }

func (a *Adapter) Fetch(ctx context.Context, q providers.Query) ([]string, error) {
	params := url.Values{
		"output":   {"sd1"},
		"command":  {q.Keyword},
		"nresults": {"10"},
		"intl":     {q.Country},
	}
	body, err := a.client.Get(ctx, ID, providers.WithQuery(a.BaseURL, params),
		providers.Header{Name: "Accept-Language", Value: q.Locale("-")})
	if err != nil {
		return nil, err
	}
	// r is absent when there are no suggestions
	return providers.StringsOrEmpty(ID, body, "r.#.k")
}
