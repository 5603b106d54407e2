// Package cache memoizes provider results per (provider, keyword, language,
// country) with a TTL and a bounded entry count.
package cache

import (
	"container/list"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sw33tLie/kwscope/pkg/normalize"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	DefaultMaxEntries = 4096
	DefaultTTL        = 30 * time.Minute
	defaultShards     = 16
)

// Options configures New.
type Options struct {
	MaxEntries int
	TTL        time.Duration
	Shards     int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Cache is safe for concurrent use. Lookups and inserts only touch one
// shard; trimming over-capacity shards happens on a background goroutine,
// so a caller never waits on eviction.
type Cache struct {
	shards   []*shard
	perShard int
	ttl      time.Duration
	now      func() time.Time

	trim      chan int
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	hits, misses atomic.Int64
}

type shard struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	lru     *list.List
	pending atomic.Bool
}

type entry struct {
	key     string
	value   suggest.ProviderResult
	expires time.Time
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// New starts a cache and its janitor. Call Close to stop the janitor.
func New(opts Options) *Cache {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Shards <= 0 {
		opts.Shards = defaultShards
	}
	if opts.Shards > opts.MaxEntries {
		opts.Shards = opts.MaxEntries
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Cache{
		shards:   make([]*shard, opts.Shards),
		perShard: (opts.MaxEntries + opts.Shards - 1) / opts.Shards,
		ttl:      opts.TTL,
		now:      opts.Now,
		trim:     make(chan int, opts.Shards),
		done:     make(chan struct{}),
	}
	for i := range c.shards {
		c.shards[i] = &shard{items: make(map[string]*list.Element), lru: list.New()}
	}
	c.wg.Add(1)
	go c.janitor()
	return c
}

// Fingerprint builds the cache key of one provider lookup. The keyword is
// compared in normalized form.
func Fingerprint(provider suggest.ProviderID, keyword, language, country string) string {
	return strings.Join([]string{
		string(provider),
		normalize.Key(keyword),
		strings.ToLower(language),
		strings.ToUpper(country),
	}, "\x1f")
}

func (c *Cache) shardFor(key string) (int, *shard) {
	h := fnv.New32a()
	h.Write([]byte(key))
	i := int(h.Sum32() % uint32(len(c.shards)))
	return i, c.shards[i]
}

// Get returns a private copy of the cached result. Expired entries are
// misses; the janitor removes them later.
func (c *Cache) Get(key string) (suggest.ProviderResult, bool) {
	_, s := c.shardFor(key)
	s.mu.Lock()
	el, ok := s.items[key]
	if !ok || !c.now().Before(el.Value.(*entry).expires) {
		s.mu.Unlock()
		c.misses.Add(1)
		return suggest.ProviderResult{}, false
	}
	s.lru.MoveToFront(el)
	v := el.Value.(*entry).value.Clone()
	s.mu.Unlock()
	c.hits.Add(1)
	return v, true
}

// Set stores a copy of res under key.
func (c *Cache) Set(key string, res suggest.ProviderResult) {
	i, s := c.shardFor(key)
	e := &entry{key: key, value: res.Clone(), expires: c.now().Add(c.ttl)}
	e.value.Cause = nil

	s.mu.Lock()
	if el, ok := s.items[key]; ok {
		el.Value = e
		s.lru.MoveToFront(el)
	} else {
		s.items[key] = s.lru.PushFront(e)
	}
	over := s.lru.Len() > c.perShard
	s.mu.Unlock()

	if over && s.pending.CompareAndSwap(false, true) {
		select {
		case c.trim <- i:
		default:
			s.pending.Store(false)
		}
	}
}

// Len is the number of stored entries, expired ones included until swept.
func (c *Cache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += s.lru.Len()
		s.mu.Unlock()
	}
	return n
}

// Stats returns entry and hit counters.
func (c *Cache) Stats() Stats {
	return Stats{Entries: c.Len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Sweep drops expired entries and trims every shard to capacity. It returns
// the number of entries removed.
func (c *Cache) Sweep() int {
	removed := 0
	for _, s := range c.shards {
		removed += c.sweepShard(s)
	}
	return removed
}

func (c *Cache) sweepShard(s *shard) int {
	now := c.now()
	removed := 0
	s.mu.Lock()
	defer s.mu.Unlock()
	for el := s.lru.Back(); el != nil; {
		prev := el.Prev()
		e := el.Value.(*entry)
		if !now.Before(e.expires) || s.lru.Len() > c.perShard {
			s.lru.Remove(el)
			delete(s.items, e.key)
			removed++
		}
		el = prev
	}
	return removed
}

func (c *Cache) janitor() {
	defer c.wg.Done()
	for {
		select {
		case i := <-c.trim:
			s := c.shards[i]
			// Cleared first so a Set racing the sweep can signal again.
			s.pending.Store(false)
			c.sweepShard(s)
		case <-c.done:
			return
		}
	}
}

// Close stops the janitor. The cache stays usable; over-capacity shards are
// then only trimmed by Sweep.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
	})
}
