package scheduler

import (
	"context"
	"time"

	"energiebroker_backend/platform/logger"
)

const (
	defaultSnapshotCleanupInterval = 24 * time.Hour
	defaultSnapshotRetention       = 400 * 24 * time.Hour
)

// SnapshotPruner deletes stored market price snapshots.
type SnapshotPruner interface {
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// SnapshotCleanup periodically removes market price snapshots older than the retention window.
type SnapshotCleanup struct {
	repo      SnapshotPruner
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewSnapshotCleanup(repo SnapshotPruner, log *logger.Logger, interval, retention time.Duration) *SnapshotCleanup {
	if interval <= 0 {
		interval = defaultSnapshotCleanupInterval
	}
	if retention <= 0 {
		retention = defaultSnapshotRetention
	}

	return &SnapshotCleanup{
		repo:      repo,
		log:       log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

func (c *SnapshotCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *SnapshotCleanup) cleanup(ctx context.Context) {
	before := c.now().Add(-c.retention)

	deleted, err := c.repo.DeleteBefore(ctx, before)
	if err != nil {
		c.log.Warn("market price snapshot cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("market price snapshot cleanup deleted snapshots", "deleted", deleted)
	}
}
