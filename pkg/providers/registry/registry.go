// Package registry holds the closed, compile-time set of suggestion
// adapters.
package registry

import (
	"fmt"
	"sort"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/providers/amazon"
	"github.com/sw33tLie/kwscope/pkg/providers/appstore"
	"github.com/sw33tLie/kwscope/pkg/providers/baidu"
	"github.com/sw33tLie/kwscope/pkg/providers/bing"
	"github.com/sw33tLie/kwscope/pkg/providers/duckduckgo"
	"github.com/sw33tLie/kwscope/pkg/providers/ebay"
	"github.com/sw33tLie/kwscope/pkg/providers/google"
	"github.com/sw33tLie/kwscope/pkg/providers/naver"
	"github.com/sw33tLie/kwscope/pkg/providers/pinterest"
	"github.com/sw33tLie/kwscope/pkg/providers/playstore"
	"github.com/sw33tLie/kwscope/pkg/providers/wikipedia"
	"github.com/sw33tLie/kwscope/pkg/providers/yahoo"
	"github.com/sw33tLie/kwscope/pkg/providers/yandex"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

// Registry is an immutable set of adapters keyed by ID.
type Registry struct {
	adapters map[suggest.ProviderID]providers.Adapter
	order    []suggest.ProviderID
}

// Default builds every known adapter on a shared client. The registration
// order doubles as the default merge priority.
func Default(c *providers.Client) *Registry {
	r, err := New(
		google.NewWeb(c),
		bing.New(c),
		amazon.New(c),
		google.NewShopping(c),
		ebay.New(c),
		google.NewYouTube(c),
		google.NewNews(c),
		duckduckgo.New(c),
		yahoo.New(c),
		wikipedia.New(c),
		appstore.New(c),
		playstore.New(c),
		pinterest.New(c),
		yandex.New(c),
		baidu.New(c),
		naver.New(c),
	)
	if err != nil {
		panic(err)
	}
	return r
}

// New builds a registry from adapters. Duplicate IDs are rejected.
func New(adapters ...providers.Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[suggest.ProviderID]providers.Adapter, len(adapters))}
	for _, a := range adapters {
		if _, dup := r.adapters[a.ID()]; dup {
			return nil, fmt.Errorf("duplicate adapter %q", a.ID())
		}
		r.adapters[a.ID()] = a
		r.order = append(r.order, a.ID())
	}
	return r, nil
}

// Get returns the adapter for id.
func (r *Registry) Get(id suggest.ProviderID) (providers.Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// IDs returns adapter IDs in registration order.
func (r *Registry) IDs() []suggest.ProviderID {
	return append([]suggest.ProviderID(nil), r.order...)
}

// Sorted returns adapter IDs in lexical order.
func (r *Registry) Sorted() []suggest.ProviderID {
	ids := r.IDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len is the number of registered adapters.
func (r *Registry) Len() int { return len(r.order) }

// Override applies base URL overrides keyed by provider ID, for pointing
// adapters at mirrors or test servers. Unknown IDs are an error.
func (r *Registry) Override(baseURLs map[string]string) error {
	for id, u := range baseURLs {
		a, ok := r.adapters[suggest.ProviderID(id)]
		if !ok {
			return fmt.Errorf("unknown provider %q", id)
		}
		if err := setBaseURL(a, u); err != nil {
			return err
		}
	}
	return nil
}

func setBaseURL(a providers.Adapter, u string) error {
	switch v := a.(type) {
	case *google.Adapter:
		v.BaseURL = u
	case *bing.Adapter:
		v.BaseURL = u
	case *duckduckgo.Adapter:
		v.BaseURL = u
	case *yahoo.Adapter:
		v.BaseURL = u
	case *yandex.Adapter:
		v.BaseURL = u
	case *baidu.Adapter:
		v.BaseURL = u
	case *naver.Adapter:
		v.BaseURL = u
	case *amazon.Adapter:
		v.BaseURL = u
	case *ebay.Adapter:
		v.BaseURL = u
	case *playstore.Adapter:
		v.BaseURL = u
	case *appstore.Adapter:
		v.BaseURL = u
	case *pinterest.Adapter:
		v.BaseURL = u
	case *wikipedia.Adapter:
		v.BaseURL = u
	default:
		return fmt.Errorf("provider %q has no configurable base URL", a.ID())
	}
	return nil
}
