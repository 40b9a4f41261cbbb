package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type CreatePolicyRequest struct {
	Name                    string `json:"name" validate:"required,min=1,max=100"`
	FirstResponseMinutes    int    `json:"firstResponseMinutes" validate:"required,gt=0"`
	FollowUpMinutes         int    `json:"followUpMinutes" validate:"required,gt=0"`
	ResolutionMinutes       int    `json:"resolutionMinutes" validate:"required,gt=0"`
	WarningThresholdPercent int    `json:"warningThresholdPercent" validate:"gte=0,lte=100"`
	IsDefault               bool   `json:"isDefault"`
}

type UpdatePolicyRequest struct {
	Name                    *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	FirstResponseMinutes    *int    `json:"firstResponseMinutes,omitempty" validate:"omitempty,gt=0"`
	FollowUpMinutes         *int    `json:"followUpMinutes,omitempty" validate:"omitempty,gt=0"`
	ResolutionMinutes       *int    `json:"resolutionMinutes,omitempty" validate:"omitempty,gt=0"`
	WarningThresholdPercent *int    `json:"warningThresholdPercent,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsDefault               *bool   `json:"isDefault,omitempty"`
	IsActive                *bool   `json:"isActive,omitempty"`
}

// Response DTOs
type PolicyResponse struct {
	ID                      uuid.UUID `json:"id"`
	Name                    string    `json:"name"`
	FirstResponseMinutes    int       `json:"firstResponseMinutes"`
	FollowUpMinutes         int       `json:"followUpMinutes"`
	ResolutionMinutes       int       `json:"resolutionMinutes"`
	WarningThresholdPercent int       `json:"warningThresholdPercent"`
	IsDefault               bool      `json:"isDefault"`
	IsActive                bool      `json:"isActive"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

type TrackingResponse struct {
	ID                    uuid.UUID  `json:"id"`
	LeadID                uuid.UUID  `json:"leadId"`
	PolicyID              uuid.UUID  `json:"policyId"`
	StartedAt             time.Time  `json:"startedAt"`
	FirstResponseDue      time.Time  `json:"firstResponseDue"`
	FirstResponseAt       *time.Time `json:"firstResponseAt,omitempty"`
	FirstResponseBreached bool       `json:"firstResponseBreached"`
	ResolutionDue         time.Time  `json:"resolutionDue"`
	ResolvedAt            *time.Time `json:"resolvedAt,omitempty"`
	ResolutionBreached    bool       `json:"resolutionBreached"`
	State                 string     `json:"state"`
	Dimension             string     `json:"dimension"`
}
