// Package google implements the Google suggestqueries family: web search
// plus the YouTube, Shopping and News verticals selected with ds.
package google

import (
	"context"
	"net/url"
	"strings"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const DefaultBaseURL = "https://suggestqueries.google.com/complete/search"

const (
	IDWeb      suggest.ProviderID = "google"
	IDYouTube  suggest.ProviderID = "youtube"
	IDShopping suggest.ProviderID = "google-shopping"
	IDNews     suggest.ProviderID = "google-news"
)

type Adapter struct {
	client   *providers.Client
	id       suggest.ProviderID
	ds       string
	category suggest.Category

	BaseURL string
}

func newAdapter(c *providers.Client, id suggest.ProviderID, ds string, cat suggest.Category) *Adapter {
	return &Adapter{client: c, id: id, ds: ds, category: cat, BaseURL: DefaultBaseURL}
}

func NewWeb(c *providers.Client) *Adapter {
	return newAdapter(c, IDWeb, "", suggest.CategoryGeneral)
}

func NewYouTube(c *providers.Client) *Adapter {
	return newAdapter(c, IDYouTube, "yt", suggest.CategoryTrends)
}

func NewShopping(c *providers.Client) *Adapter {
	return newAdapter(c, IDShopping, "sh", suggest.CategoryMarketplace)
}

func NewNews(c *providers.Client) *Adapter {
	return newAdapter(c, IDNews, "n", suggest.CategoryTrends)
}

func (a *Adapter) ID() suggest.ProviderID     { return a.id }
func (a *Adapter) Family() string             { return "" }
func (a *Adapter) Category() suggest.Category { return a.category }

func (a *Adapter) Fetch(ctx context.Context, q providers.Query) ([]string, error) {
	params := url.Values{
		"client": {"firefox"},
		"hl":     {q.Language},
		"gl":     {strings.ToLower(q.Country)},
		"q":      {q.Keyword},
	}
	if a.ds != "" {
		params.Set("ds", a.ds)
	}
	body, err := a.client.Get(ctx, a.id, providers.WithQuery(a.BaseURL, params))
	if err != nil {
		return nil, err
	}
	return providers.OpenSearch(a.id, body)
}
