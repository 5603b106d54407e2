// Package bing queries Bing's OpenSearch suggestion endpoint.
package bing

import (
	"context"
	"net/url"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	ID             suggest.ProviderID = "bing"
	DefaultBaseURL                    = "https://api.bing.com/osjson.aspx"
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
	params := url.Values{"query": {q.Keyword}, "market": {q.Locale("-")}}
	body, err := a.client.Get(ctx, ID, providers.WithQuery(a.BaseURL, params),
		providers.Header{Name: "Accept-Language", Value: q.Locale("-")})
	if err != nil {
		return nil, err
	}
	return providers.OpenSearch(ID, body)
}
