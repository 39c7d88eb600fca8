package storage

import (
	"context"
	"fmt"
	"time"

	"voxrelay/pkg/logging"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically removes stale transient files.
type Sweeper struct {
	store      *Store
	maxAge     time.Duration
	schedule   string // robfig cron expression, e.g. "@every 15m"
	cronRunner *cron.Cron
}

// NewSweeper creates a Sweeper for store.
func NewSweeper(store *Store, schedule string, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		store:      store,
		maxAge:     maxAge,
		schedule:   schedule,
		cronRunner: cron.New(),
	}
}

// Start sweeps once, schedules further sweeps, and stops when ctx is cancelled.
func (sw *Sweeper) Start(ctx context.Context) error {
	if _, err := sw.cronRunner.AddFunc(sw.schedule, sw.RunOnce); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", sw.schedule, err)
	}

	sw.RunOnce()
	sw.cronRunner.Start()
	logging.Info("🧹 Sweeper started", "schedule", sw.schedule, "max_age", sw.maxAge)

	go func() {
		<-ctx.Done()
		<-sw.cronRunner.Stop().Done()
		logging.Info("🧹 Sweeper stopped")
	}()

	return nil
}

// RunOnce performs a single sweep.
func (sw *Sweeper) RunOnce() {
	removed, err := sw.store.Sweep(sw.maxAge)
	if err != nil {
		logging.Warn("🧹 Sweep incomplete", "removed", removed, "error", err)
		return
	}
	if removed > 0 {
		logging.Info("🧹 Removed stale transient files", "count", removed, "dir", sw.store.Dir())
	}
}
