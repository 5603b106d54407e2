// Package baidu queries Baidu's suggestion endpoint in OpenSearch mode.
package baidu

import (
	"context"
	"net/url"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	ID             suggest.ProviderID = "baidu"
	DefaultBaseURL                    = "https://suggestion.baidu.com/su"
)

type Adapter struct {
	client  *providers.Client
	BaseURL string
}

func New(c *providers.Client) *Adapter { return &Adapter{client: c, BaseURL: DefaultBaseURL} }

func (a *Adapter) ID() suggest.ProviderID     { return ID }
func (a *Adapter) Family() string             { return "" }
func (a *Adapter) Category() suggest.Category { return suggest.CategoryGeneral }

// Fetch requests UTF-8 but Baidu may still answer in GBK; the client
// decodes by Content-Type.
func (a *Adapter) Fetch(ctx context.Context, q providers.Query) ([]string, error) {
	params := url.Values{"wd": {q.Keyword}, "action": {"opensearch"}, "ie": {"utf-8"}}
	body, err := a.client.Get(ctx, ID, providers.WithQuery(a.BaseURL, params))
	if err != nil {
		return nil, err
	}
	return providers.OpenSearch(ID, body)
}
