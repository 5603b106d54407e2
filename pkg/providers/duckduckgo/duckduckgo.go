// Package duckduckgo queries the DuckDuckGo autocomplete endpoint.
package duckduckgo

import (
	"context"
	"net/url"
	"strings"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	ID             suggest.ProviderID = "duckduckgo"
	DefaultBaseURL                    = "https://duckduckgo.com/ac/"
)

type Adapter struct {
	client  *providers.Client
	BaseURL string
}

func New(c *providers.Client) *Adapter { return &Adapter{client: c, BaseURL: DefaultBaseURL} }

func (a *Adapter) ID() suggest.ProviderID     { return ID }
func (a *Adapter) Family() string             { return "" }
func (a *Adapter) Category() suggest.Category { return suggest.CategoryGeneral }

// Fetch asks for suggestions in DuckDuckGo's cc-ll region format.
func (a *Adapter) Fetch(ctx context.Context, q providers.Query) ([]string, error) {
	params := url.Values{
		"q":  {q.Keyword},
		"kl": {strings.ToLower(q.Country) + "-" + q.Language},
	}
	body, err := a.client.Get(ctx, ID, providers.WithQuery(a.BaseURL, params))
	if err != nil {
		return nil, err
	}
	return providers.Strings(ID, body, "#.phrase")
}
