package dispatch

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	DefaultBreakerThreshold = 5
	DefaultBreakerCooldown  = 60 * time.Second
)

// Breaker is a per-provider circuit breaker. State lives in atomics so
// concurrent requests never serialize on it.
type Breaker struct {
	threshold int32
	cooldown  time.Duration
	now       func() time.Time
	states    sync.Map // suggest.ProviderID -> *breakerState
}

type breakerState struct {
	failures  atomic.Int32
	openUntil atomic.Int64 // unix nanos, 0 when closed
}

// BreakerState is a snapshot of one provider's breaker.
type BreakerState struct {
	Provider  suggest.ProviderID `json:"provider"`
	Failures  int                `json:"consecutive_failures"`
	Open      bool               `json:"open"`
	OpenUntil time.Time          `json:"open_until,omitempty"`
}

// NewBreaker returns a breaker that opens after threshold consecutive
// failures and stays open for cooldown.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = DefaultBreakerThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultBreakerCooldown
	}
	return &Breaker{threshold: int32(threshold), cooldown: cooldown, now: time.Now}
}

func (b *Breaker) state(id suggest.ProviderID) *breakerState {
	if st, ok := b.states.Load(id); ok {
		return st.(*breakerState)
	}
	st, _ := b.states.LoadOrStore(id, &breakerState{})
	return st.(*breakerState)
}

// Allow reports whether a call to id may proceed. Once the cooldown has
// passed calls are let through again; one more failure reopens the breaker.
func (b *Breaker) Allow(id suggest.ProviderID) bool {
	until := b.state(id).openUntil.Load()
	return until == 0 || b.now().UnixNano() >= until
}

// Record feeds the outcome of one call. Success closes the breaker; only
// failure kinds that indicate an unhealthy upstream count against it.
func (b *Breaker) Record(id suggest.ProviderID, kind suggest.ErrorKind) {
	st := b.state(id)
	if kind == "" {
		st.failures.Store(0)
		st.openUntil.Store(0)
		return
	}
	if !kind.CountsAsFailure() {
		return
	}
	if st.failures.Add(1) >= b.threshold {
		st.openUntil.Store(b.now().Add(b.cooldown).UnixNano())
	}
}

// Snapshot returns the state of every provider seen so far, sorted by ID.
func (b *Breaker) Snapshot() []BreakerState {
	var out []BreakerState
	now := b.now().UnixNano()
	b.states.Range(func(k, v interface{}) bool {
		st := v.(*breakerState)
		until := st.openUntil.Load()
		s := BreakerState{
			Provider: k.(suggest.ProviderID),
			Failures: int(st.failures.Load()),
			Open:     until != 0 && now < until,
		}
		if s.Open {
			s.OpenUntil = time.Unix(0, until)
		}
		out = append(out, s)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}
