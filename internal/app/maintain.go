package app

import (
	"context"
	"fmt"
	"time"

	cronlib "github.com/robfig/cron/v3"
)

var specParser = cronlib.NewParser(cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor)

// Schedule configures the periodic cache sweep and history prune. An empty
// spec disables that job. The returned scheduler is not started.
func (a *App) Schedule(sweepSpec, pruneSpec string, retention time.Duration) (*cronlib.Cron, error) {
	c := cronlib.New(cronlib.WithParser(specParser), cronlib.WithChain(cronlib.SkipIfStillRunning(cronlib.DiscardLogger)))

	if sweepSpec != "" && a.Cache != nil {
		if _, err := c.AddFunc(sweepSpec, a.SweepCache); err != nil {
			return nil, fmt.Errorf("cache.sweep %q: %w", sweepSpec, err)
		}
	}
	if pruneSpec != "" && a.DB != nil && retention > 0 {
		if _, err := c.AddFunc(pruneSpec, func() { a.PruneHistory(context.Background(), retention) }); err != nil {
			return nil, fmt.Errorf("db.prune %q: %w", pruneSpec, err)
		}
	}
	return c, nil
}

func (a *App) SweepCache() {
	if a.Cache == nil {
		return
	}
	if n := a.Cache.Sweep(); n > 0 {
		a.log.Debugf("Cache sweep removed %d entries", n)
	}
}

// PruneHistory deletes history older than retention.
func (a *App) PruneHistory(ctx context.Context, retention time.Duration) int64 {
	if a.DB == nil {
		return 0
	}
	n, err := a.DB.Prune(ctx, retention)
	if err != nil {
		a.log.Warnf("History prune failed: %v", err)
		return 0
	}
	if n > 0 {
		a.log.Infof("Pruned %d history records older than %s", n, retention)
	}
	return n
}
