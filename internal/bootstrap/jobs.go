package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/botforge-ai/botforge/internal/perf"
	"go.uber.org/fx"
)

const purgeInterval = 24 * time.Hour

// StartRetentionJob purges request samples older than the configured
// retention window, once at startup and then daily. Snapshots are kept
// forever; only the raw samples age out.
func StartRetentionJob(lc fx.Lifecycle, store *perf.Store, cfg *Config, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	run := func() {
		cutoff := time.Now().UTC().AddDate(0, 0, -cfg.SampleRetentionDays)
		removed, err := store.PurgeBefore(ctx, cutoff)
		if err != nil {
			logger.Error("sample purge failed", "error", err, "cutoff", cutoff)
			return
		}
		if removed > 0 {
			logger.Info("purged expired samples", "removed", removed, "cutoff", cutoff)
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				run()
				ticker := time.NewTicker(purgeInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						run()
					case <-ctx.Done():
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

var JobsModule = fx.Options(
	fx.Invoke(StartRetentionJob),
)
