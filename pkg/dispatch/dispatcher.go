// Package dispatch fans one suggestion request out to every applicable
// adapter under a shared bounded worker pool, then merges what comes back.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sw33tLie/kwscope/pkg/cache"
	"github.com/sw33tLie/kwscope/pkg/difficulty"
	"github.com/sw33tLie/kwscope/pkg/locale"
	"github.com/sw33tLie/kwscope/pkg/normalize"
	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	DefaultTimeout       = 5 * time.Second
	DefaultMergeOverhead = 250 * time.Millisecond
)

// ErrNoUsableProviders means no adapter produced data for a request.
var ErrNoUsableProviders = errors.New("no usable providers")

// NoResultsError carries the per-provider outcomes of a request that
// gathered no data at all.
type NoResultsError struct {
	RequestID string
	Providers []suggest.ProviderStatus
}

func (e *NoResultsError) Error() string {
	if len(e.Providers) == 0 {
		return ErrNoUsableProviders.Error() + ": no provider is both requested and allowed"
	}
	parts := make([]string, 0, len(e.Providers))
	for _, p := range e.Providers {
		parts = append(parts, fmt.Sprintf("%s=%s", p.Provider, p.Error))
	}
	return ErrNoUsableProviders.Error() + ": " + strings.Join(parts, ", ")
}

func (e *NoResultsError) Unwrap() error { return ErrNoUsableProviders }

// Adapters is the set of adapters a Dispatcher can call.
type Adapters interface {
	Get(id suggest.ProviderID) (providers.Adapter, bool)
	IDs() []suggest.ProviderID
}

// Scorer computes difficulty scores for the seed keyword.
type Scorer interface {
	Score(ctx context.Context, keyword, language, country string) (suggest.DifficultyScore, error)
}

// Config holds the dispatcher knobs. Zero values take defaults.
type Config struct {
	// PoolSize caps in-flight adapter calls system-wide. 0 means twice the
	// number of registered adapters.
	PoolSize      int
	Timeout       time.Duration
	MergeOverhead time.Duration
	Retry         RetryPolicy

	BreakerThreshold int
	BreakerCooldown  time.Duration

	// Priority is the fixed provider order used when merging. Empty means
	// registration order.
	Priority []suggest.ProviderID
}

// Options wires a Dispatcher's collaborators. Cache, Scorer and Log are
// optional.
type Options struct {
	Adapters Adapters
	Resolver *locale.Resolver
	Cache    *cache.Cache
	Scorer   Scorer
	Config   Config
	Log      Logger
}

// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	adapters   Adapters
	resolver   *locale.Resolver
	cache      *cache.Cache
	scorer     Scorer
	breaker    *Breaker
	pool       *Pool
	normalizer *normalize.Normalizer
	cfg        Config
	log        Logger
}

// New builds a Dispatcher and starts its worker pool.
func New(opts Options) *Dispatcher {
	cfg := opts.Config
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MergeOverhead <= 0 {
		cfg.MergeOverhead = DefaultMergeOverhead
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 2 * len(opts.Adapters.IDs())
	}
	if len(cfg.Priority) == 0 {
		cfg.Priority = opts.Adapters.IDs()
	}
	log := opts.Log
	if log == nil {
		log = nopLogger{}
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = locale.New(nil)
	}
	return &Dispatcher{
		adapters:   opts.Adapters,
		resolver:   resolver,
		cache:      opts.Cache,
		scorer:     opts.Scorer,
		breaker:    NewBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		pool:       NewPool(cfg.PoolSize),
		normalizer: normalize.New(cfg.Priority),
		cfg:        cfg,
		log:        log,
	}
}

// PoolSize is the system-wide cap on in-flight adapter calls.
func (d *Dispatcher) PoolSize() int { return d.pool.Size() }

// Close stops the worker pool.
func (d *Dispatcher) Close() { d.pool.Close() }

// Breaker exposes the circuit breaker state.
func (d *Dispatcher) Breaker() *Breaker { return d.breaker }

// Deadline is the aggregate per-request ceiling.
func (d *Dispatcher) Deadline() time.Duration { return d.cfg.Timeout + d.cfg.MergeOverhead }

// call is one adapter's slot in a request.
type call struct {
	adapter providers.Adapter
	query   providers.Query
	status  suggest.ProviderStatus
	result  suggest.ProviderResult
	key     string
	done    bool
	// live is set when the adapter is actually called.
	live bool
}

type outcome struct {
	idx    int
	result suggest.ProviderResult
}

// Dispatch runs req against the providers that are both requested and in
// allowed. A nil allowed set permits every registered provider; an empty
// request provider list asks for all of them.
//
// Invalid input fails before any network activity. Adapter failures are
// reported in the response metadata; an error is returned only when no
// provider produced data.
func (d *Dispatcher) Dispatch(ctx context.Context, req suggest.Request, allowed suggest.ProviderSet) (*suggest.AggregatedResponse, error) {
	started := time.Now()
	req, err := req.Normalized()
	if err != nil {
		return nil, err
	}
	reqID := xid.New().String()

	calls := d.plan(req, allowed)
	if len(calls) == 0 {
		return nil, &NoResultsError{RequestID: reqID}
	}

	aggCtx, cancel := context.WithTimeout(ctx, d.Deadline())
	defer cancel()

	d.fanOut(ctx, aggCtx, reqID, calls)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("request %s: %w", reqID, err)
	}

	var results []suggest.ProviderResult
	meta := suggest.Metadata{RequestID: reqID}
	for _, c := range calls {
		meta.Providers = append(meta.Providers, c.status)
		switch c.status.Status {
		case suggest.StatusOK, suggest.StatusCached:
			results = append(results, c.result)
			meta.ViaFallback = meta.ViaFallback || c.status.ViaFallback
		default:
			// Locales a provider does not serve are not a loss.
			if c.status.Error != suggest.ErrUnsupported {
				meta.Partial = true
			}
		}
	}
	if len(results) == 0 {
		d.log.Warnf("[%s] no usable providers for %q", reqID, req.Keyword)
		return nil, &NoResultsError{RequestID: reqID, Providers: meta.Providers}
	}

	merged := d.normalizer.Merge(results)
	summary := normalize.AssignVolumes(merged)
	resp := &suggest.AggregatedResponse{
		Keyword:    req.Keyword,
		Language:   req.Language,
		Country:    req.Country,
		Categories: normalize.Categorize(merged, req.Language, d.categoryOf),
		Summary:    summary,
		Flagged:    normalize.Flag(merged),
	}

	if req.WithDifficulty && d.scorer != nil {
		resp.Difficulty = d.difficulty(ctx, reqID, req)
	}

	meta.ElapsedMS = time.Since(started).Milliseconds()
	resp.Metadata = meta
	d.log.Infof("[%s] %q %s-%s: %d keywords from %v (%d/%d providers) in %dms",
		reqID, req.Keyword, req.Language, req.Country, summary.TotalKeywords, meta.Succeeded(), len(results), len(calls), meta.ElapsedMS)
	return resp, nil
}

// difficulty scores req within the per-provider timeout. A scorer that
// overruns yields the neutral score; one that fails yields nothing.
func (d *Dispatcher) difficulty(ctx context.Context, reqID string, req suggest.Request) *suggest.DifficultyScore {
	sctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	type scored struct {
		score suggest.DifficultyScore
		err   error
	}
	done := make(chan scored, 1)
	go func() {
		score, err := d.scorer.Score(sctx, req.Keyword, req.Language, req.Country)
		done <- scored{score, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			d.log.Warnf("[%s] difficulty for %q: %v", reqID, req.Keyword, r.err)
			return nil
		}
		return &r.score
	case <-sctx.Done():
		d.log.Warnf("[%s] difficulty for %q: %v, using neutral score", reqID, req.Keyword, sctx.Err())
		score := difficulty.NeutralScore(req.Keyword)
		return &score
	}
}

func (d *Dispatcher) categoryOf(id suggest.ProviderID) suggest.Category {
	if a, ok := d.adapters.Get(id); ok {
		return a.Category()
	}
	return suggest.CategoryGeneral
}

// effective returns the providers to run, in registration order.
func (d *Dispatcher) effective(req suggest.Request, allowed suggest.ProviderSet) (ids []suggest.ProviderID, unknown []suggest.ProviderID) {
	requested := suggest.NewProviderSet(req.Providers...)
	for _, id := range req.Providers {
		if _, ok := d.adapters.Get(id); !ok {
			unknown = append(unknown, id)
		}
	}
	for _, id := range d.adapters.IDs() {
		if len(requested) > 0 && !requested.Has(id) {
			continue
		}
		if allowed != nil && !allowed.Has(id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, unknown
}

// plan resolves each effective adapter to a skip, a cache hit or a live call.
func (d *Dispatcher) plan(req suggest.Request, allowed suggest.ProviderSet) []*call {
	ids, unknown := d.effective(req, allowed)
	calls := make([]*call, 0, len(ids)+len(unknown))
	for _, id := range ids {
		a, _ := d.adapters.Get(id)
		c := &call{
			adapter: a,
			query:   providers.Query{Keyword: req.Keyword, Language: req.Language, Country: req.Country},
			status:  suggest.ProviderStatus{Provider: id},
		}
		calls = append(calls, c)

		if fam := a.Family(); fam != "" {
			res, err := d.resolver.Resolve(fam, req.Country)
			if err != nil {
				c.skip(suggest.ErrUnsupported)
				continue
			}
			c.query.Market = &res
			c.status.MarketplaceID = res.Entry.MarketplaceID
			c.status.ViaFallback = res.ViaFallback
		}

		if d.cache != nil {
			c.key = cache.Fingerprint(id, req.Keyword, req.Language, req.Country)
			if res, ok := d.cache.Get(c.key); ok {
				c.finish(res, suggest.StatusCached)
				continue
			}
		}

		if !d.breaker.Allow(id) {
			c.skip(suggest.ErrUpstreamUnavailable)
			continue
		}
		c.live = true
	}
	// requested ids outside the registry are reported, not silently dropped
	for _, id := range unknown {
		if allowed != nil && !allowed.Has(id) {
			continue
		}
		c := &call{status: suggest.ProviderStatus{Provider: id}}
		c.skip(suggest.ErrUnsupported)
		calls = append(calls, c)
	}
	return calls
}

func (c *call) skip(kind suggest.ErrorKind) {
	c.result = suggest.ProviderResult{Provider: c.status.Provider, Error: kind}
	c.status.Status = suggest.StatusSkipped
	c.status.Error = kind
	c.done = true
}

func (c *call) finish(res suggest.ProviderResult, status string) {
	c.result = res
	c.status.Status = status
	c.status.Error = res.Error
	c.status.LatencyMS = res.LatencyMS()
	c.status.Items = len(res.RawItems)
	if status == suggest.StatusCached {
		c.status.LatencyMS = 0
	}
	c.done = true
}

// fanOut submits every live call to the pool and collects outcomes until all
// settle or ctx expires. Calls still pending at the deadline are recorded as
// timeouts, or as canceled when caller went away. Nothing that happens after
// caller is done is held against a provider.
func (d *Dispatcher) fanOut(caller, ctx context.Context, reqID string, calls []*call) {
	var live []int
	for i, c := range calls {
		if c.live {
			live = append(live, i)
		}
	}
	if len(live) == 0 {
		return
	}

	outcomes := make(chan outcome, len(live))
	pending := 0
	for _, i := range live {
		c := calls[i]
		idx := i
		fetch := d.cfg.Retry.Wrap(func(ctx context.Context) suggest.ProviderResult {
			return providers.Run(ctx, c.adapter, c.query)
		})
		err := d.pool.Submit(ctx, func() {
			taskCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
			defer cancel()
			outcomes <- outcome{idx: idx, result: fetch(taskCtx)}
		})
		if err != nil {
			// Never reached the provider.
			d.settle(reqID, c, suggest.ProviderResult{Provider: c.adapter.ID(), Error: abandonKind(err), Cause: err}, false)
			continue
		}
		pending++
	}

	for pending > 0 {
		select {
		case o := <-outcomes:
			pending--
			d.settle(reqID, calls[o.idx], o.result, caller.Err() == nil)
		case <-ctx.Done():
			kind := abandonKind(ctx.Err())
			for _, i := range live {
				if c := calls[i]; !c.done {
					d.settle(reqID, c, suggest.ProviderResult{Provider: c.adapter.ID(), Error: kind, Cause: ctx.Err()}, caller.Err() == nil)
				}
			}
			return
		}
	}
}

// settle records the outcome of a live call. Breaker and cache only see
// outcomes that are attributable to the provider.
func (d *Dispatcher) settle(reqID string, c *call, res suggest.ProviderResult, attributable bool) {
	id := c.adapter.ID()
	res.Provider = id
	if attributable {
		d.breaker.Record(id, res.Error)
	}
	if res.OK() {
		if attributable && d.cache != nil && c.key != "" {
			d.cache.Set(c.key, res)
		}
		c.finish(res, suggest.StatusOK)
		d.log.Debugf("[%s] %s: %d items in %dms", reqID, id, len(res.RawItems), res.LatencyMS())
		return
	}
	if res.Error == suggest.ErrUnsupported {
		// The adapter declined the locale; nothing was lost.
		c.finish(res, suggest.StatusSkipped)
		d.log.Debugf("[%s] %s skipped: %v", reqID, id, res.Cause)
		return
	}
	c.finish(res, suggest.StatusFailed)
	d.log.Warnf("[%s] %s failed (%s): %v", reqID, id, res.Error, res.Cause)
}

// abandonKind classifies a call that was given up on before it settled.
func abandonKind(err error) suggest.ErrorKind {
	if errors.Is(err, context.Canceled) {
		return suggest.ErrCanceled
	}
	return suggest.ErrTimeout
}
