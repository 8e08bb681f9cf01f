// Package scheduler drives the periodic full-feed sync. Unlike the on-demand
// HTTP trigger it never caps per-row errors and never retries a failed run;
// the next tick (or an operator) picks it up.
package scheduler

import (
	"context"
	"time"

	"tiendasur/internal/feeds"
	"tiendasur/internal/ingest"
	applog "tiendasur/internal/log"
)

type Scheduler struct {
	Engine   *ingest.Engine
	Interval time.Duration
}

// Start launches the sync loop; it stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	summary, err := s.Engine.Sync(ctx, feeds.Elit(), ingest.Options{
		Source: ingest.SourceCSV,
		// nil MaxErrorsBeforeAbort: accumulate everything, never abort.
	})
	if err != nil {
		applog.RunError("scheduler.sync.fail", err, map[string]any{"provider": "elit"})
		return
	}
	applog.Run("scheduler.sync", map[string]any{
		"provider": "elit", "imported": summary.Imported,
		"pruned": summary.Pruned, "errors": len(summary.Errors),
	})
}
