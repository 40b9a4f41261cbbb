// Package events defines the domain events exchanged between the lead
// lifecycle and its collaborators. Event names are stable identifiers used
// for bus subscription.
package events

import (
	"time"

	"github.com/niketshah083/lead-management-backend-sub002/platform/events"

	"github.com/google/uuid"
)

const (
	LeadCreatedEvent   = "lead.created"
	StatusChangedEvent = "lead.status_changed"
	SlaWarningEvent    = "lead.sla_warning"
	SlaBreachEvent     = "lead.sla_breach"
)

// LeadCreated fires when a lead and its tracking are committed.
type LeadCreated struct {
	events.BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	StatusID     uuid.UUID  `json:"statusId"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	CategoryID   *uuid.UUID `json:"categoryId,omitempty"`
}

func (e LeadCreated) EventName() string { return LeadCreatedEvent }

// StatusChanged fires after a transition commits.
type StatusChanged struct {
	events.BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	FromStatusID uuid.UUID  `json:"fromStatusId"`
	ToStatusID   uuid.UUID  `json:"toStatusId"`
	ActorID      uuid.UUID  `json:"actorId"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	Comment      string     `json:"comment,omitempty"`
	Resolved     bool       `json:"resolved"`
}

func (e StatusChanged) EventName() string { return StatusChangedEvent }

// SlaWarning fires the first time a tracking crosses its warning threshold
// on either window.
type SlaWarning struct {
	events.BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	TrackingID   uuid.UUID  `json:"trackingId"`
	Dimension    string     `json:"dimension"`
	Due          time.Time  `json:"due"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
}

func (e SlaWarning) EventName() string { return SlaWarningEvent }

// SlaBreach fires the first time a tracking misses a deadline on either
// window.
type SlaBreach struct {
	events.BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	TrackingID   uuid.UUID  `json:"trackingId"`
	Dimension    string     `json:"dimension"`
	Due          time.Time  `json:"due"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
}

func (e SlaBreach) EventName() string { return SlaBreachEvent }
