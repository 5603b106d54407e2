// Package app wires the suggestion pipeline together from configuration.
// Both the CLI and the HTTP server run on top of an App.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sw33tLie/kwscope/pkg/cache"
	"github.com/sw33tLie/kwscope/pkg/difficulty"
	"github.com/sw33tLie/kwscope/pkg/dispatch"
	"github.com/sw33tLie/kwscope/pkg/locale"
	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/providers/registry"
	"github.com/sw33tLie/kwscope/pkg/storage"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

type Config struct {
	Dispatch dispatch.Config

	CacheMaxEntries int
	CacheTTL        time.Duration
	NoCache         bool

	// Allowed restricts which providers may ever be called. Empty means all.
	Allowed []string
	// BaseURLs overrides adapter endpoints by provider ID.
	BaseURLs map[string]string

	UserAgent        string
	MarketplacesPath string

	SERPURL string
	Brands  []string

	// DBPath enables request history when set.
	DBPath string
}

type App struct {
	Registry   *registry.Registry
	Resolver   *locale.Resolver
	Cache      *cache.Cache
	Dispatcher *dispatch.Dispatcher
	Scorer     *difficulty.Scorer
	DB         *storage.DB
	Allowed    suggest.ProviderSet

	log *logrus.Logger
}

// New builds an App. Marketplace table rows that cannot resolve are logged
// and dropped; every other configuration problem is an error.
func New(cfg Config, log *logrus.Logger) (*App, error) {
	if log == nil {
		log = logrus.New()
	}
	client := providers.NewClient(providers.ClientOptions{UserAgent: cfg.UserAgent, Logger: log})

	reg := registry.Default(client)
	if err := reg.Override(cfg.BaseURLs); err != nil {
		return nil, fmt.Errorf("providers.base_urls: %w", err)
	}

	allowed, err := allowedSet(reg, cfg.Allowed)
	if err != nil {
		return nil, err
	}

	table, err := locale.LoadTable(cfg.MarketplacesPath)
	if err != nil {
		return nil, fmt.Errorf("marketplaces: %w", err)
	}
	resolver := locale.New(table)
	for _, p := range resolver.Problems() {
		log.Warnf("Marketplace table: %v", p)
	}

	opts := []difficulty.Option{difficulty.WithLogger(log)}
	if len(cfg.Brands) > 0 {
		opts = append(opts, difficulty.WithBrands(cfg.Brands))
	}
	scorer := difficulty.New(difficulty.NewHTMLSource(client, cfg.SERPURL), opts...)

	a := &App{
		Registry: reg,
		Resolver: resolver,
		Scorer:   scorer,
		Allowed:  allowed,
		log:      log,
	}
	if !cfg.NoCache {
		a.Cache = cache.New(cache.Options{MaxEntries: cfg.CacheMaxEntries, TTL: cfg.CacheTTL})
	}
	if cfg.DBPath != "" {
		if a.DB, err = storage.Open(cfg.DBPath); err != nil {
			a.Close()
			return nil, fmt.Errorf("open history %s: %w", cfg.DBPath, err)
		}
	}
	a.Dispatcher = dispatch.New(dispatch.Options{
		Adapters: reg,
		Resolver: resolver,
		Cache:    a.Cache,
		Scorer:   scorer,
		Config:   cfg.Dispatch,
		Log:      log,
	})
	return a, nil
}

func allowedSet(reg *registry.Registry, ids []string) (suggest.ProviderSet, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	set := suggest.ProviderSet{}
	for _, id := range ids {
		if _, ok := reg.Get(suggest.ProviderID(id)); !ok {
			return nil, fmt.Errorf("providers.allowed: unknown provider %q", id)
		}
		set[suggest.ProviderID(id)] = struct{}{}
	}
	return set, nil
}

// Suggest dispatches req and, when history is enabled, records the outcome.
// Requests that gathered no data are recorded as failed.
func (a *App) Suggest(ctx context.Context, req suggest.Request) (*suggest.AggregatedResponse, error) {
	resp, err := a.Dispatcher.Dispatch(ctx, req, a.Allowed)
	if a.DB == nil {
		return resp, err
	}

	var rec storage.Record
	var nre *dispatch.NoResultsError
	switch {
	case err == nil:
		rec = storage.RecordFromResponse(resp)
	case errors.As(err, &nre):
		norm, _ := req.Normalized()
		rec = storage.Record{
			RequestID: nre.RequestID,
			Keyword:   norm.Keyword,
			Language:  norm.Language,
			Country:   norm.Country,
			Failed:    true,
			Providers: nre.Providers,
		}
	default:
		return resp, err
	}
	// Recorded even when the caller has gone away.
	if herr := a.DB.Insert(context.WithoutCancel(ctx), rec); herr != nil {
		a.log.Warnf("Could not record request %s: %v", rec.RequestID, herr)
	}
	return resp, err
}

// Score validates the locale and scores keyword on its own.
func (a *App) Score(ctx context.Context, keyword, language, country string) (suggest.DifficultyScore, error) {
	lang, err := suggest.NormalizeLanguage(language)
	if err != nil {
		return suggest.DifficultyScore{}, err
	}
	cc, err := suggest.NormalizeCountry(country)
	if err != nil {
		return suggest.DifficultyScore{}, err
	}
	return a.Scorer.Score(ctx, keyword, lang, cc)
}

// Provider describes one registered adapter.
type Provider struct {
	ID       suggest.ProviderID    `json:"id"`
	Family   string                `json:"family"`
	Category suggest.Category      `json:"category"`
	Allowed  bool                  `json:"allowed"`
	Breaker  dispatch.BreakerState `json:"breaker"`
}

// Providers lists adapters in lexical order with their breaker state.
func (a *App) Providers() []Provider {
	states := map[suggest.ProviderID]dispatch.BreakerState{}
	for _, s := range a.Dispatcher.Breaker().Snapshot() {
		states[s.Provider] = s
	}
	var out []Provider
	for _, id := range a.Registry.Sorted() {
		ad, _ := a.Registry.Get(id)
		st, ok := states[id]
		if !ok {
			st = dispatch.BreakerState{Provider: id}
		}
		out = append(out, Provider{
			ID:       id,
			Family:   ad.Family(),
			Category: ad.Category(),
			Allowed:  a.Allowed == nil || a.Allowed.Has(id),
			Breaker:  st,
		})
	}
	return out
}

func (a *App) Close() {
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
