package lifecycle

import (
	"context"
	"sync/atomic"
	"time"

	domevents "github.com/niketshah083/lead-management-backend-sub002/internal/events"
	sladomain "github.com/niketshah083/lead-management-backend-sub002/internal/sla/domain"
	slarepo "github.com/niketshah083/lead-management-backend-sub002/internal/sla/repository"
	"github.com/niketshah083/lead-management-backend-sub002/platform/events"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TrackingStore is the slice of timing persistence the sweep drives. Flag
// writes report whether this call flipped the flag; that gates event
// emission to once per state change.
type TrackingStore interface {
	ListOpenTrackings(ctx context.Context, afterID uuid.UUID, limit int) ([]sladomain.Tracking, error)
	MarkFlag(ctx context.Context, trackingID uuid.UUID, flag string) (bool, error)
}

// SweepStats summarizes one full pass over the open trackings.
type SweepStats struct {
	Evaluated int
	Warnings  int
	Breaches  int
	Failures  int
	Duration  time.Duration
}

// Sweep evaluates every open tracking against the current clock and raises
// the flags and events for newly crossed thresholds. Per-lead failures are
// logged and counted without aborting the pass. Flags are monotonic, so the
// sweep is idempotent: a rerun with no intervening writes changes nothing
// and emits nothing.
func (c *Coordinator) Sweep(ctx context.Context, trackings TrackingStore, batchSize, concurrency int) (SweepStats, error) {
	start := time.Now()
	now := c.now()

	var evaluated, warnings, breaches, failures atomic.Int64

	afterID := uuid.Nil
	for {
		batch, err := trackings.ListOpenTrackings(ctx, afterID, batchSize)
		if err != nil {
			return SweepStats{}, err
		}
		if len(batch) == 0 {
			break
		}
		afterID = batch[len(batch)-1].ID

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, tracking := range batch {
			g.Go(func() error {
				evaluated.Add(1)
				warned, breached, err := c.sweepOne(gctx, trackings, tracking, now)
				if err != nil {
					failures.Add(1)
					c.log.Error("sweep evaluation failed",
						"tracking_id", tracking.ID, "lead_id", tracking.LeadID, "error", err)
					return nil
				}
				if warned {
					warnings.Add(1)
				}
				if breached {
					breaches.Add(1)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return SweepStats{}, err
		}

		if len(batch) < batchSize {
			break
		}
	}

	stats := SweepStats{
		Evaluated: int(evaluated.Load()),
		Warnings:  int(warnings.Load()),
		Breaches:  int(breaches.Load()),
		Failures:  int(failures.Load()),
		Duration:  time.Since(start),
	}
	c.log.SweepBatch(stats.Evaluated, stats.Warnings, stats.Breaches, stats.Failures,
		float64(stats.Duration.Milliseconds()))
	return stats, nil
}

func (c *Coordinator) sweepOne(ctx context.Context, trackings TrackingStore, tracking sladomain.Tracking, now time.Time) (warned, breached bool, err error) {
	eval := sladomain.Evaluate(tracking, now)

	switch eval.State {
	case sladomain.StateWarning:
		flipped, err := trackings.MarkFlag(ctx, tracking.ID, warnedFlag(eval.Dimension))
		if err != nil || !flipped {
			return false, false, err
		}
		c.bus.Publish(ctx, domevents.SlaWarning{
			BaseEvent:    events.BaseEventAt(now),
			LeadID:       tracking.LeadID,
			TrackingID:   tracking.ID,
			Dimension:    string(eval.Dimension),
			Due:          dueFor(tracking, eval.Dimension),
			AssignedToID: c.assigneeOf(ctx, tracking.LeadID),
		})
		return true, false, nil

	case sladomain.StateBreached:
		flipped, err := trackings.MarkFlag(ctx, tracking.ID, breachedFlag(eval.Dimension))
		if err != nil || !flipped {
			return false, false, err
		}
		c.bus.Publish(ctx, domevents.SlaBreach{
			BaseEvent:    events.BaseEventAt(now),
			LeadID:       tracking.LeadID,
			TrackingID:   tracking.ID,
			Dimension:    string(eval.Dimension),
			Due:          dueFor(tracking, eval.Dimension),
			AssignedToID: c.assigneeOf(ctx, tracking.LeadID),
		})
		return false, true, nil
	}

	return false, false, nil
}

// assigneeOf resolves the lead's assignee for notification routing. A
// lookup failure only costs the event its assignee field.
func (c *Coordinator) assigneeOf(ctx context.Context, leadID uuid.UUID) *uuid.UUID {
	lead, err := c.leads.GetLead(ctx, leadID)
	if err != nil {
		c.log.Warn("could not resolve lead assignee for alert", "lead_id", leadID, "error", err)
		return nil
	}
	return lead.AssignedToID
}

func warnedFlag(d sladomain.Dimension) string {
	if d == sladomain.DimensionResolution {
		return slarepo.FlagResolutionWarned
	}
	return slarepo.FlagFirstResponseWarned
}

func breachedFlag(d sladomain.Dimension) string {
	if d == sladomain.DimensionResolution {
		return slarepo.FlagResolutionBreached
	}
	return slarepo.FlagFirstResponseBreached
}

func dueFor(t sladomain.Tracking, d sladomain.Dimension) time.Time {
	if d == sladomain.DimensionResolution {
		return t.ResolutionDue
	}
	return t.FirstResponseDue
}
