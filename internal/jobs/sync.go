package jobs

import (
	"context"
	"time"

	"xsync/internal/logging"
	"xsync/internal/metrics"
	"xsync/internal/syncer"
)

// RunSyncOnce executes a single sync pass with metrics and a log line.
func RunSyncOnce(ctx context.Context, s *syncer.Syncer) syncer.Report {
	start := time.Now()
	metrics.SyncRuns.Inc()
	rep := s.Run(ctx)
	metrics.ObserveSyncDuration(start)
	metrics.SetQuotaUsed(rep.Used)
	if rep.NewPosts > 0 {
		metrics.PostsWritten.Add(float64(rep.NewPosts))
	}
	logging.Info("sync_once", map[string]any{
		"outcome":   string(rep.Outcome),
		"new_posts": rep.NewPosts,
		"used":      rep.Used,
	})
	return rep
}

// RunSyncLoop runs RunSyncOnce immediately and then on a ticker until ctx is
// cancelled. Pass failures are reported, never fatal to the loop.
func RunSyncLoop(ctx context.Context, s *syncer.Syncer, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	// run immediately
	RunSyncOnce(ctx, s)
	for {
		select {
		case <-ctx.Done():
			logging.Info("sync_loop_stop", nil)
			return ctx.Err()
		case <-t.C:
			if rep := RunSyncOnce(ctx, s); rep.Err != nil {
				logging.Error("sync_once_error", map[string]any{"error": rep.Err.Error()})
			}
		}
	}
}
