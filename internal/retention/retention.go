// Package retention runs the periodic expiry sweep. The list path already
// evicts lazily on every read; this scheduler is the safety net for chats
// whose user never lists them again.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"ridepool/pkg/config"
	"ridepool/pkg/lifecycle"
	"ridepool/pkg/logger"
)

// DefaultCron is daily at 02:00 when no schedule is configured.
const DefaultCron = "0 2 * * *"

// Start starts the retention scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.RetentionConfig, sw *lifecycle.Sweeper) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = DefaultCron
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}

	logger.Info("retention_enabled", "cron", cronExpr, "window", sw.Window.String(), "dry_run", cfg.DryRun)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, cfg.DryRun, sw)
	return cancel, nil
}

// RunOnce triggers a single sweep outside the schedule (admin/test trigger).
func RunOnce(sw *lifecycle.Sweeper, dryRun bool) (int, error) {
	return sw.SweepAll(dryRun)
}

// runScheduler computes the next tick for the configured cron expression via
// gronx and sleeps until then. Full cron syntax is supported.
func runScheduler(ctx context.Context, cronExpr string, dryRun bool, sw *lifecycle.Sweeper) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("retention_scheduler_stopping")
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			runSweep(sw, dryRun)
			// small sleep to avoid a tight loop around the tick boundary
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				logger.Info("retention_scheduler_stopping")
				return
			}
			continue
		}

		select {
		case <-time.After(wait):
			runSweep(sw, dryRun)
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}

func runSweep(sw *lifecycle.Sweeper, dryRun bool) {
	n, err := sw.SweepAll(dryRun)
	if err != nil {
		logger.Error("retention_run_error", "error", err)
		return
	}
	logger.Info("retention_run_done", "evicted", n, "dry_run", dryRun)
}
