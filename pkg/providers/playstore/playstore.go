// Package playstore queries Google Play's search suggestion endpoint.
package playstore

import (
	"context"
	"net/url"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	ID             suggest.ProviderID = "play-store"
	DefaultBaseURL                    = "https://market.android.com/suggest/SuggRequest"
)

type Adapter struct {
	client  *providers.Client
	BaseURL string
}

func New(c *providers.Client) *Adapter { return &Adapter{client: c, BaseURL: DefaultBaseURL} }

func (a *Adapter) ID() suggest.ProviderID     { return ID }
func (a *Adapter) Family() string             { return "" }
func (a *Adapter) Category() suggest.Category { return suggest.CategoryApps }

func (a *Adapter) Fetch(ctx context.Context, q providers.Query) ([]string, error) {
	params := url.Values{
		"json":  {"1"},
		"c":     {"3"},
		"query": {q.Keyword},
		"hl":    {q.Language},
		"gl":    {q.Country},
	}
	body, err := a.client.Get(ctx, ID, providers.WithQuery(a.BaseURL, params))
	if err != nil {
		return nil, err
	}
	return providers.Strings(ID, body, "#.s")
}
