package dispatch

import (
	"context"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

// RetryPolicy decorates a task with retries of transient failures
// (rate limiting, upstream unavailable). Adapters themselves never retry.
type RetryPolicy struct {
	// Attempts is the total number of tries; 0 or 1 disables retrying.
	Attempts int
	MinWait  time.Duration
	MaxWait  time.Duration
}

// Wrap returns fetch decorated with the policy. Backoff is linear with
// jitter and always yields to ctx.
func (p RetryPolicy) Wrap(fetch func(context.Context) suggest.ProviderResult) func(context.Context) suggest.ProviderResult {
	if p.Attempts <= 1 {
		return fetch
	}
	return func(ctx context.Context) suggest.ProviderResult {
		started := time.Now()
		var res suggest.ProviderResult
		for attempt := 1; ; attempt++ {
			res = fetch(ctx)
			if res.OK() || !res.Error.Retryable() || attempt >= p.Attempts {
				break
			}
			wait := retryablehttp.LinearJitterBackoff(p.MinWait, p.MaxWait, attempt, nil)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				res.Latency = time.Since(started)
				return res
			case <-timer.C:
			}
		}
		res.Latency = time.Since(started)
		return res
	}
}
