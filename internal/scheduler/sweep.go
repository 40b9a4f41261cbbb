package scheduler

import (
	"context"
	"time"

	"github.com/niketshah083/lead-management-backend-sub002/internal/leads/lifecycle"
	"github.com/niketshah083/lead-management-backend-sub002/platform/config"
	"github.com/niketshah083/lead-management-backend-sub002/platform/logger"
)

// SweepRunner drives the periodic breach sweep: an explicit ticker loop with
// a shutdown signal rather than a cron registration, so the stop path is
// visible and the in-flight pass always finishes.
type SweepRunner struct {
	coord       *lifecycle.Coordinator
	trackings   lifecycle.TrackingStore
	interval    time.Duration
	batchSize   int
	concurrency int
	log         *logger.Logger
}

// NewSweepRunner wires the sweep over the coordinator.
func NewSweepRunner(coord *lifecycle.Coordinator, trackings lifecycle.TrackingStore, cfg config.SweepConfig, log *logger.Logger) *SweepRunner {
	return &SweepRunner{
		coord:       coord,
		trackings:   trackings,
		interval:    cfg.GetSweepInterval(),
		batchSize:   cfg.GetSweepBatchSize(),
		concurrency: cfg.GetSweepConcurrency(),
		log:         log,
	}
}

// Run sweeps immediately, then on every tick until the context is
// cancelled. A failed pass is logged and the loop keeps going; the next
// tick retries from scratch, which is safe because flag writes are
// monotonic.
func (r *SweepRunner) Run(ctx context.Context) error {
	r.log.Info("sla sweep started", "interval", r.interval.String(), "batch_size", r.batchSize)

	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("sla sweep stopped")
			return nil
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *SweepRunner) sweep(ctx context.Context) {
	if _, err := r.coord.Sweep(ctx, r.trackings, r.batchSize, r.concurrency); err != nil {
		if ctx.Err() != nil {
			return
		}
		r.log.Error("sla sweep pass failed", "error", err)
	}
}
