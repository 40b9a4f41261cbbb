package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type CreateStatusRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=100"`
	Rank       int     `json:"rank" validate:"gte=0"`
	IsInitial  bool    `json:"isInitial"`
	IsFinal    bool    `json:"isFinal"`
	StatusType *string `json:"statusType,omitempty" validate:"omitempty,oneof=positive negative"`
}

type UpdateStatusRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	IsInitial  *bool   `json:"isInitial,omitempty"`
	IsFinal    *bool   `json:"isFinal,omitempty"`
	StatusType *string `json:"statusType,omitempty" validate:"omitempty,oneof=positive negative"`
	ClearType  bool    `json:"clearType,omitempty"`
	IsActive   *bool   `json:"isActive,omitempty"`
}

type ReorderStatusesRequest struct {
	StatusIDs []string `json:"statusIds" validate:"required,min=1,dive,uuid4"`
}

type CreateTransitionRequest struct {
	FromStatusID    string   `json:"fromStatusId" validate:"required,uuid4"`
	ToStatusID      string   `json:"toStatusId" validate:"required,uuid4"`
	RequiresComment bool     `json:"requiresComment"`
	AllowedRoles    []string `json:"allowedRoles,omitempty" validate:"omitempty,dive,oneof=Admin Manager Executive"`
}

type BulkCreateTransitionsRequest struct {
	FromStatusID    string   `json:"fromStatusId" validate:"required,uuid4"`
	ToStatusIDs     []string `json:"toStatusIds" validate:"required,min=1,dive,uuid4"`
	RequiresComment bool     `json:"requiresComment"`
	AllowedRoles    []string `json:"allowedRoles,omitempty" validate:"omitempty,dive,oneof=Admin Manager Executive"`
}

type UpdateTransitionRequest struct {
	IsActive        *bool     `json:"isActive,omitempty"`
	RequiresComment *bool     `json:"requiresComment,omitempty"`
	AllowedRoles    *[]string `json:"allowedRoles,omitempty" validate:"omitempty,dive,oneof=Admin Manager Executive"`
}

// Response DTOs
type StatusResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Rank       int       `json:"rank"`
	IsInitial  bool      `json:"isInitial"`
	IsFinal    bool      `json:"isFinal"`
	StatusType *string   `json:"statusType,omitempty"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type TransitionResponse struct {
	ID              uuid.UUID `json:"id"`
	FromStatusID    uuid.UUID `json:"fromStatusId"`
	ToStatusID      uuid.UUID `json:"toStatusId"`
	IsActive        bool      `json:"isActive"`
	RequiresComment bool      `json:"requiresComment"`
	AllowedRoles    []string  `json:"allowedRoles,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
