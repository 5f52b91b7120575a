package daemon

import (
	"context"
	"time"

	"lightbox/internal/logging"
)

// staleHeartbeatAfter is how long a publishing session may go without a
// heartbeat before the maintenance sweep returns it to draft.
const staleHeartbeatAfter = 5 * time.Minute

func (d *Daemon) maintenanceLoop(ctx context.Context) {
	interval := time.Duration(d.cfg.Workflow.MaintenanceInterval) * time.Second
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runMaintenance(ctx)
		}
	}
}

func (d *Daemon) runMaintenance(ctx context.Context) {
	logger := logging.NewComponentLogger(d.logger, "maintenance")

	if reclaimed, err := d.store.ReclaimStalePublishing(ctx, time.Now().UTC().Add(-staleHeartbeatAfter)); err != nil {
		logger.Warn("stale publish reclaim failed", logging.Error(err))
	} else if reclaimed > 0 {
		logger.Info("stale publishes returned to draft",
			logging.String(logging.FieldEventType, "publish_reclaimed"),
			logging.Int64("session_count", reclaimed))
	}

	retention := d.cfg.Workflow.SessionRetentionDays
	if retention > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -retention)
		if swept, err := d.store.SweepPublished(ctx, cutoff); err != nil {
			logger.Warn("published session sweep failed", logging.Error(err))
		} else if swept > 0 {
			logger.Info("expired published sessions removed",
				logging.String(logging.FieldEventType, "session_sweep"),
				logging.Int64("session_count", swept))
		}
	}

	logging.CleanupOldLogs(logger, d.cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: d.cfg.Paths.LogDir, Pattern: "lightbox-*.log"},
	)
}
