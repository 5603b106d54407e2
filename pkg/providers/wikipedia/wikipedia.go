// Package wikipedia queries the MediaWiki OpenSearch API of the
// language edition matching the request.
package wikipedia

import (
	"context"
	"net/url"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	ID suggest.ProviderID = "wikipedia"
	// DefaultBaseURL is expanded with the request language.
	DefaultBaseURL = "https://{lang}.wikipedia.org/w/api.php"
)

type Adapter struct {
	client  *providers.Client
	BaseURL string
}

func New(c *providers.Client) *Adapter { return &Adapter{client: c, BaseURL: DefaultBaseURL} }

func (a *Adapter) ID() suggest.ProviderID     { return ID }
func (a *Adapter) Family() string             { return "" }
func (a *Adapter) Category() suggest.Category { return suggest.CategoryReference }

func (a *Adapter) Fetch(ctx context.Context, q providers.Query) ([]string, error) {
	base := providers.Expand(a.BaseURL, map[string]string{"lang": q.Language})
	params := url.Values{
		"action":    {"opensearch"},
		"format":    {"json"},
		"limit":     {"10"},
		"namespace": {"0"},
		"search":    {q.Keyword},
	}
	body, err := a.client.Get(ctx, ID, providers.WithQuery(base, params))
	if err != nil {
		return nil, err
	}
	return providers.OpenSearch(ID, body)
}
