// Package naver queries the Naver autocomplete service.
package naver

import (
	"context"
	"net/url"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	ID             suggest.ProviderID = "naver"
	DefaultBaseURL                    = "https://ac.search.naver.com/nx/ac"
)

type Adapter struct {
	client  *providers.Client
	BaseURL string
}

func New(c *providers.Client) *Adapter { return &Adapter{client: c, BaseURL: DefaultBaseURL} }

func (a *Adapter) ID() suggest.ProviderID     { return ID }
func (a *Adapter) Family() string             { return "" }
func (a *Adapter) Category() suggest.Category { return suggest.CategoryGeneral }

// Fetch reads the first result group; each item is a one-element array.
func (a *Adapter) Fetch(ctx context.Context, q providers.Query) ([]string, error) {
	params := url.Values{
		"q":        {q.Keyword},
		"st":       {"100"},
		"r_format": {"json"},
		"q_enc":    {"UTF-8"},
		"r_enc":    {"UTF-8"},
	}
	body, err := a.client.Get(ctx, ID, providers.WithQuery(a.BaseURL, params))
	if err != nil {
		return nil, err
	}
	return providers.StringsOrEmpty(ID, body, "items.0.#.0")
}
