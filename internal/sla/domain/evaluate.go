package domain

import "time"

// State classifies a tracking relative to its deadlines.
type State string

const (
	StateOnTime   State = "ON_TIME"
	StateWarning  State = "WARNING"
	StateBreached State = "BREACHED"
)

// Dimension names which deadline produced the state.
type Dimension string

const (
	DimensionNone          Dimension = "NONE"
	DimensionFirstResponse Dimension = "FIRST_RESPONSE"
	DimensionResolution    Dimension = "RESOLUTION"
)

// Evaluation is the result of comparing a tracking against an instant.
type Evaluation struct {
	State     State
	Dimension Dimension
}

// Evaluate classifies a tracking at the given instant. It is a pure function
// of its arguments and never mutates the tracking; persisting flags and
// emitting notifications are the caller's decisions.
//
// The two windows are checked sequentially: the resolution dimension is only
// considered once a first response has been recorded. A resolved tracking is
// always on time regardless of the instant.
func Evaluate(t Tracking, now time.Time) Evaluation {
	if t.Resolved() {
		return Evaluation{State: StateOnTime, Dimension: DimensionNone}
	}

	if !t.Responded() {
		if now.After(t.FirstResponseDue) {
			return Evaluation{State: StateBreached, Dimension: DimensionFirstResponse}
		}
		if withinWarning(t.StartedAt, t.FirstResponseDue, t.WarningThresholdPercent, now) {
			return Evaluation{State: StateWarning, Dimension: DimensionFirstResponse}
		}
		return Evaluation{State: StateOnTime, Dimension: DimensionNone}
	}

	if now.After(t.ResolutionDue) {
		return Evaluation{State: StateBreached, Dimension: DimensionResolution}
	}
	if withinWarning(t.StartedAt, t.ResolutionDue, t.WarningThresholdPercent, now) {
		return Evaluation{State: StateWarning, Dimension: DimensionResolution}
	}
	return Evaluation{State: StateOnTime, Dimension: DimensionNone}
}

// withinWarning reports whether elapsed time has reached the threshold
// percentage of the window between start and due.
func withinWarning(start, due time.Time, thresholdPercent int, now time.Time) bool {
	window := due.Sub(start)
	if window <= 0 {
		return true
	}
	threshold := start.Add(window * time.Duration(thresholdPercent) / 100)
	return !now.Before(threshold)
}
