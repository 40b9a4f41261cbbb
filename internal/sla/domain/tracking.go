package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tracking is the per-lead timing record, one-to-one with a lead. It
// snapshots the policy's warning threshold at creation so later policy edits
// do not move goalposts for leads already in flight.
//
// firstResponseAt and resolvedAt are write-once. The breached and warned
// flags only ever go from false to true.
type Tracking struct {
	ID       uuid.UUID
	LeadID   uuid.UUID
	PolicyID uuid.UUID

	StartedAt               time.Time
	WarningThresholdPercent int

	FirstResponseDue      time.Time
	FirstResponseAt       *time.Time
	FirstResponseBreached bool
	FirstResponseWarned   bool

	ResolutionDue      time.Time
	ResolvedAt         *time.Time
	ResolutionBreached bool
	ResolutionWarned   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StartClock builds the tracking for a new lead from the policy in force,
// anchoring both due times at the reference instant.
func StartClock(leadID uuid.UUID, policy Policy, referenceTime time.Time) Tracking {
	return Tracking{
		LeadID:                  leadID,
		PolicyID:                policy.ID,
		StartedAt:               referenceTime,
		WarningThresholdPercent: policy.WarningThresholdPercent,
		FirstResponseDue:        referenceTime.Add(policy.FirstResponseWindow()),
		ResolutionDue:           referenceTime.Add(policy.ResolutionWindow()),
	}
}

// RecordFirstResponse stamps the first outbound touch. Returns false without
// changing anything when a response was already recorded; the first stamp
// wins and is never moved.
func (t *Tracking) RecordFirstResponse(responseTime time.Time) bool {
	if t.FirstResponseAt != nil {
		return false
	}
	at := responseTime
	t.FirstResponseAt = &at
	if responseTime.After(t.FirstResponseDue) {
		t.FirstResponseBreached = true
	}
	return true
}

// RecordResolution stamps the instant the lead reached a final status.
// Like RecordFirstResponse, only the first stamp takes effect.
func (t *Tracking) RecordResolution(resolutionTime time.Time) bool {
	if t.ResolvedAt != nil {
		return false
	}
	at := resolutionTime
	t.ResolvedAt = &at
	if resolutionTime.After(t.ResolutionDue) {
		t.ResolutionBreached = true
	}
	return true
}

// Resolved reports whether the lead has reached a final status.
func (t Tracking) Resolved() bool {
	return t.ResolvedAt != nil
}

// Responded reports whether a first response has been recorded.
func (t Tracking) Responded() bool {
	return t.FirstResponseAt != nil
}
