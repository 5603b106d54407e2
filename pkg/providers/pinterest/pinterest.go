// Package pinterest queries Pinterest's typeahead resource.
package pinterest

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	ID             suggest.ProviderID = "pinterest"
	DefaultBaseURL                    = "https://www.pinterest.com/resource/AdvancedTypeaheadResource/get/"
)

type Adapter struct {
	client  *providers.Client
	BaseURL string
}

func New(c *providers.Client) *Adapter { return &Adapter{client: c, BaseURL: DefaultBaseURL} }

func (a *Adapter) ID() suggest.ProviderID     { return ID }
func (a *Adapter) Family() string             { return "" }
func (a *Adapter) Category() suggest.Category { return suggest.CategoryGeneral }

type typeaheadData struct {
	Options struct {
		Term     string `json:"term"`
		PinScope string `json:"pin_scope"`
		Count    int    `json:"count"`
	} `json:"options"`
	Context struct{} `json:"context"`
}

func (a *Adapter) Fetch(ctx context.Context, q providers.Query) ([]string, error) {
	var data typeaheadData
	data.Options.Term = q.Keyword
	data.Options.PinScope = "pins"
	data.Options.Count = 10
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	params := url.Values{"source_url": {"/"}, "data": {string(raw)}}
	body, err := a.client.Get(ctx, ID, providers.WithQuery(a.BaseURL, params),
		providers.Header{Name: "Accept-Language", Value: q.Locale("-")},
		providers.Header{Name: "X-Requested-With", Value: "XMLHttpRequest"})
	if err != nil {
		return nil, err
	}
	return providers.StringsOrEmpty(ID, body, "resource_response.data.items.#.query")
}
