package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type CreateLeadRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	Phone        string  `json:"phone" validate:"required"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Source       *string `json:"source,omitempty" validate:"omitempty,max=100"`
	AssignedToID *string `json:"assignedToId,omitempty" validate:"omitempty,uuid4"`
	CategoryID   *string `json:"categoryId,omitempty" validate:"omitempty,uuid4"`
}

type UpdateLeadRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Source        *string `json:"source,omitempty" validate:"omitempty,max=100"`
	AssignedToID  *string `json:"assignedToId,omitempty" validate:"omitempty,uuid4"`
	ClearAssignee bool    `json:"clearAssignee,omitempty"`
	CategoryID    *string `json:"categoryId,omitempty" validate:"omitempty,uuid4"`
	ClearCategory bool    `json:"clearCategory,omitempty"`
}

type TransitionRequest struct {
	ToStatusID string `json:"toStatusId" validate:"required,uuid4"`
	Comment    string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type AddMessageRequest struct {
	Direction   string `json:"direction" validate:"required,oneof=inbound outbound"`
	Body        string `json:"body" validate:"required,min=1,max=10000"`
	IsAutoReply bool   `json:"isAutoReply"`
}

// Response DTOs
type LeadResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        *string    `json:"email,omitempty"`
	Source       *string    `json:"source,omitempty"`
	StatusID     uuid.UUID  `json:"statusId"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	CategoryID   *uuid.UUID `json:"categoryId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type HistoryResponse struct {
	ID           uuid.UUID `json:"id"`
	FromStatusID uuid.UUID `json:"fromStatusId"`
	ToStatusID   uuid.UUID `json:"toStatusId"`
	ActorID      uuid.UUID `json:"actorId"`
	Comment      *string   `json:"comment,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

type MessageResponse struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"leadId"`
	SenderID    *uuid.UUID `json:"senderId,omitempty"`
	Direction   string     `json:"direction"`
	Body        string     `json:"body"`
	IsAutoReply bool       `json:"isAutoReply"`
	CreatedAt   time.Time  `json:"createdAt"`
}
