// Package domain holds the pure timing model: policies, per-lead trackings
// and the breach evaluator. Nothing in this package touches storage or the
// wall clock; callers inject every instant.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Policy is the timing contract applied to a lead at creation. Windows are
// expressed in whole minutes from the clock start. At most one policy is the
// default at any time; the storage layer enforces the swap.
type Policy struct {
	ID                      uuid.UUID
	Name                    string
	FirstResponseMinutes    int
	FollowUpMinutes         int
	ResolutionMinutes       int
	WarningThresholdPercent int
	IsDefault               bool
	IsActive                bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// FirstResponseWindow returns the allotted first-response duration.
func (p Policy) FirstResponseWindow() time.Duration {
	return time.Duration(p.FirstResponseMinutes) * time.Minute
}

// ResolutionWindow returns the allotted resolution duration.
func (p Policy) ResolutionWindow() time.Duration {
	return time.Duration(p.ResolutionMinutes) * time.Minute
}

// FollowUpWindow returns the expected gap between consecutive touches.
func (p Policy) FollowUpWindow() time.Duration {
	return time.Duration(p.FollowUpMinutes) * time.Minute
}
