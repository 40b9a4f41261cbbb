// Package lifecycle orchestrates every lead mutation: it runs the
// visibility check and the transition guard before any write, keeps the
// timing record in step with status changes, and emits the domain events
// collaborators subscribe to.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	dirdomain "github.com/niketshah083/lead-management-backend-sub002/internal/directory/domain"
	domevents "github.com/niketshah083/lead-management-backend-sub002/internal/events"
	"github.com/niketshah083/lead-management-backend-sub002/internal/leads/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/leads/transport"
	sladomain "github.com/niketshah083/lead-management-backend-sub002/internal/sla/domain"
	slatransport "github.com/niketshah083/lead-management-backend-sub002/internal/sla/transport"
	sfdomain "github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/domain"
	sftransport "github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/transport"
	"github.com/niketshah083/lead-management-backend-sub002/internal/visibility"
	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"
	"github.com/niketshah083/lead-management-backend-sub002/platform/events"
	"github.com/niketshah083/lead-management-backend-sub002/platform/logger"
	"github.com/niketshah083/lead-management-backend-sub002/platform/phone"

	"github.com/google/uuid"
)

// LeadStore is the slice of lead persistence the coordinator drives.
type LeadStore interface {
	CreateLead(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetLead(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	ListLeads(ctx context.Context, scope visibility.Scope, limit, offset int) ([]repository.Lead, error)
	UpdateLead(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error)
	SoftDeleteLead(ctx context.Context, id uuid.UUID) error
	ApplyTransition(ctx context.Context, params repository.ApplyTransitionParams) error
	InsertMessage(ctx context.Context, params repository.InsertMessageParams) (repository.Message, bool, error)
	ListHistory(ctx context.Context, leadID uuid.UUID) ([]repository.HistoryEntry, error)
	ListMessages(ctx context.Context, leadID uuid.UUID) ([]repository.Message, error)
}

// StatusGraph is the slice of the status graph the coordinator consults.
type StatusGraph interface {
	IsTransitionAllowed(ctx context.Context, fromStatusID, toStatusID uuid.UUID, actingRole dirdomain.Role) (sfdomain.Decision, error)
	GetStatus(ctx context.Context, id uuid.UUID) (sftransport.StatusResponse, error)
	InitialStatus(ctx context.Context) (sftransport.StatusResponse, error)
}

// TimingSource supplies the policy for new leads and tracking views.
type TimingSource interface {
	DefaultPolicy(ctx context.Context) (sladomain.Policy, error)
	GetLeadTracking(ctx context.Context, leadID uuid.UUID) (slatransport.TrackingResponse, error)
}

// VisibilityFilter gates every read and mutation by actor.
type VisibilityFilter interface {
	IsVisible(ctx context.Context, actor visibility.Actor, lead visibility.LeadView) (bool, error)
	ScopeFor(ctx context.Context, actor visibility.Actor) (visibility.Scope, error)
}

// Coordinator wires the guard, the filter and the clock around the lead
// store. The clock is injected so tests control time.
type Coordinator struct {
	leads  LeadStore
	graph  StatusGraph
	timing TimingSource
	vis    VisibilityFilter
	bus    events.Bus
	log    *logger.Logger
	now    func() time.Time
}

func NewCoordinator(leads LeadStore, graph StatusGraph, timing TimingSource, vis VisibilityFilter, bus events.Bus, log *logger.Logger) *Coordinator {
	return &Coordinator{
		leads:  leads,
		graph:  graph,
		timing: timing,
		vis:    vis,
		bus:    bus,
		log:    log,
		now:    time.Now,
	}
}

// WithClock overrides the clock source. Test hook.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// CreateLead inserts a lead in the initial status with a fresh tracking
// against the default policy, both in one transaction.
func (c *Coordinator) CreateLead(ctx context.Context, actor visibility.Actor, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	normalized := phone.NormalizeE164(req.Phone)

	assignedTo, err := parseOptionalID(req.AssignedToID, "invalid assignedToId")
	if err != nil {
		return transport.LeadResponse{}, err
	}
	categoryID, err := parseOptionalID(req.CategoryID, "invalid categoryId")
	if err != nil {
		return transport.LeadResponse{}, err
	}

	initial, err := c.graph.InitialStatus(ctx)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	policy, err := c.timing.DefaultPolicy(ctx)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	now := c.now()
	lead, err := c.leads.CreateLead(ctx, repository.CreateLeadParams{
		Name:         req.Name,
		Phone:        normalized,
		Email:        req.Email,
		Source:       req.Source,
		StatusID:     initial.ID,
		AssignedToID: assignedTo,
		CategoryID:   categoryID,
		Tracking:     sladomain.StartClock(uuid.Nil, policy, now),
	})
	if err != nil {
		if errors.Is(err, repository.ErrBadReference) {
			return transport.LeadResponse{}, apperr.Validation("assignee or category does not exist")
		}
		return transport.LeadResponse{}, err
	}

	c.bus.Publish(ctx, domevents.LeadCreated{
		BaseEvent:    events.BaseEventAt(now),
		LeadID:       lead.ID,
		StatusID:     lead.StatusID,
		AssignedToID: lead.AssignedToID,
		CategoryID:   lead.CategoryID,
	})

	return toLeadResponse(lead), nil
}

// GetLead returns a lead the actor may see.
func (c *Coordinator) GetLead(ctx context.Context, actor visibility.Actor, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := c.visibleLead(ctx, actor, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

// ListLeads returns the actor's visible slice of the portfolio.
func (c *Coordinator) ListLeads(ctx context.Context, actor visibility.Actor, limit, offset int) ([]transport.LeadResponse, error) {
	scope, err := c.vis.ScopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	leads, err := c.leads.ListLeads(ctx, scope, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		responses = append(responses, toLeadResponse(lead))
	}
	return responses, nil
}

// UpdateLead patches lead fields, including assignment.
func (c *Coordinator) UpdateLead(ctx context.Context, actor visibility.Actor, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	if _, err := c.visibleLead(ctx, actor, id); err != nil {
		return transport.LeadResponse{}, err
	}

	var normalized *string
	if req.Phone != nil {
		p := phone.NormalizeE164(*req.Phone)
		normalized = &p
	}

	assignedTo, err := parseOptionalID(req.AssignedToID, "invalid assignedToId")
	if err != nil {
		return transport.LeadResponse{}, err
	}
	categoryID, err := parseOptionalID(req.CategoryID, "invalid categoryId")
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := c.leads.UpdateLead(ctx, id, repository.UpdateLeadParams{
		Name:          req.Name,
		Phone:         normalized,
		Email:         req.Email,
		Source:        req.Source,
		AssignedToID:  assignedTo,
		ClearAssignee: req.ClearAssignee,
		CategoryID:    categoryID,
		ClearCategory: req.ClearCategory,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		case errors.Is(err, repository.ErrBadReference):
			return transport.LeadResponse{}, apperr.Validation("assignee or category does not exist")
		}
		return transport.LeadResponse{}, err
	}

	return toLeadResponse(lead), nil
}

// DeleteLead soft-deletes a lead.
func (c *Coordinator) DeleteLead(ctx context.Context, actor visibility.Actor, id uuid.UUID) error {
	if _, err := c.visibleLead(ctx, actor, id); err != nil {
		return err
	}

	if err := c.leads.SoftDeleteLead(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return err
	}
	return nil
}

// RequestTransition moves a lead along a configured edge on behalf of the
// actor. The checks run in order: visibility, guard, comment requirement.
// The status change, any resolution stamp and the history record commit
// atomically; the event fires only after the commit.
func (c *Coordinator) RequestTransition(ctx context.Context, actor visibility.Actor, leadID uuid.UUID, req transport.TransitionRequest) (transport.LeadResponse, error) {
	toStatusID, err := uuid.Parse(req.ToStatusID)
	if err != nil {
		return transport.LeadResponse{}, apperr.Validation("invalid toStatusId")
	}

	lead, err := c.visibleLead(ctx, actor, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	decision, err := c.graph.IsTransitionAllowed(ctx, lead.StatusID, toStatusID, actor.Role)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !decision.Allowed {
		return transport.LeadResponse{}, apperr.InvalidTransition("transition not permitted from the current status")
	}

	comment := strings.TrimSpace(req.Comment)
	if decision.RequiresComment && comment == "" {
		return transport.LeadResponse{}, apperr.CommentRequired("this transition requires a comment")
	}

	toStatus, err := c.graph.GetStatus(ctx, toStatusID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	now := c.now()
	var commentRef *string
	if comment != "" {
		commentRef = &comment
	}

	err = c.leads.ApplyTransition(ctx, repository.ApplyTransitionParams{
		LeadID:       lead.ID,
		FromStatusID: lead.StatusID,
		ToStatusID:   toStatusID,
		ActorID:      actor.ID,
		Comment:      commentRef,
		At:           now,
		MarkResolved: toStatus.IsFinal,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		case errors.Is(err, repository.ErrStaleStatus):
			return transport.LeadResponse{}, apperr.Conflict("lead was moved by another request, retry")
		}
		return transport.LeadResponse{}, err
	}

	c.bus.Publish(ctx, domevents.StatusChanged{
		BaseEvent:    events.BaseEventAt(now),
		LeadID:       lead.ID,
		FromStatusID: lead.StatusID,
		ToStatusID:   toStatusID,
		ActorID:      actor.ID,
		AssignedToID: lead.AssignedToID,
		Comment:      comment,
		Resolved:     toStatus.IsFinal,
	})

	lead.StatusID = toStatusID
	lead.UpdatedAt = now
	return toLeadResponse(lead), nil
}

// AddMessage appends to the lead's message log. The first outbound human
// message stamps the tracking's first response inside the same transaction.
func (c *Coordinator) AddMessage(ctx context.Context, actor visibility.Actor, leadID uuid.UUID, req transport.AddMessageRequest) (transport.MessageResponse, error) {
	if _, err := c.visibleLead(ctx, actor, leadID); err != nil {
		return transport.MessageResponse{}, err
	}

	var senderID *uuid.UUID
	if req.Direction == repository.DirectionOutbound {
		id := actor.ID
		senderID = &id
	}

	message, firstResponse, err := c.leads.InsertMessage(ctx, repository.InsertMessageParams{
		LeadID:      leadID,
		SenderID:    senderID,
		Direction:   req.Direction,
		Body:        req.Body,
		IsAutoReply: req.IsAutoReply,
		At:          c.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrBadReference) {
			return transport.MessageResponse{}, apperr.NotFound("lead not found")
		}
		return transport.MessageResponse{}, err
	}

	if firstResponse {
		c.log.Info("first response recorded", "lead_id", leadID, "sender_id", actor.ID)
	}

	return toMessageResponse(message), nil
}

// GetTracking returns the lead's timing record with its live state.
func (c *Coordinator) GetTracking(ctx context.Context, actor visibility.Actor, leadID uuid.UUID) (slatransport.TrackingResponse, error) {
	if _, err := c.visibleLead(ctx, actor, leadID); err != nil {
		return slatransport.TrackingResponse{}, err
	}
	return c.timing.GetLeadTracking(ctx, leadID)
}

// ListHistory returns the lead's transition records.
func (c *Coordinator) ListHistory(ctx context.Context, actor visibility.Actor, leadID uuid.UUID) ([]transport.HistoryResponse, error) {
	if _, err := c.visibleLead(ctx, actor, leadID); err != nil {
		return nil, err
	}

	entries, err := c.leads.ListHistory(ctx, leadID)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, transport.HistoryResponse{
			ID:           entry.ID,
			FromStatusID: entry.FromStatusID,
			ToStatusID:   entry.ToStatusID,
			ActorID:      entry.ActorID,
			Comment:      entry.Comment,
			OccurredAt:   entry.OccurredAt,
		})
	}
	return responses, nil
}

// ListMessages returns the lead's message log.
func (c *Coordinator) ListMessages(ctx context.Context, actor visibility.Actor, leadID uuid.UUID) ([]transport.MessageResponse, error) {
	if _, err := c.visibleLead(ctx, actor, leadID); err != nil {
		return nil, err
	}

	messages, err := c.leads.ListMessages(ctx, leadID)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, toMessageResponse(message))
	}
	return responses, nil
}

func (c *Coordinator) visibleLead(ctx context.Context, actor visibility.Actor, id uuid.UUID) (repository.Lead, error) {
	lead, err := c.leads.GetLead(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found")
		}
		return repository.Lead{}, err
	}

	visible, err := c.vis.IsVisible(ctx, actor, visibility.LeadView{
		AssignedToID: lead.AssignedToID,
		CategoryID:   lead.CategoryID,
	})
	if err != nil {
		return repository.Lead{}, err
	}
	if !visible {
		return repository.Lead{}, apperr.Forbidden("you do not have access to this lead")
	}

	return lead, nil
}

func parseOptionalID(raw *string, msg string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperr.Validation(msg)
	}
	return &id, nil
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:           lead.ID,
		Name:         lead.Name,
		Phone:        lead.Phone,
		Email:        lead.Email,
		Source:       lead.Source,
		StatusID:     lead.StatusID,
		AssignedToID: lead.AssignedToID,
		CategoryID:   lead.CategoryID,
		CreatedAt:    lead.CreatedAt,
		UpdatedAt:    lead.UpdatedAt,
	}
}

func toMessageResponse(message repository.Message) transport.MessageResponse {
	return transport.MessageResponse{
		ID:          message.ID,
		LeadID:      message.LeadID,
		SenderID:    message.SenderID,
		Direction:   message.Direction,
		Body:        message.Body,
		IsAutoReply: message.IsAutoReply,
		CreatedAt:   message.CreatedAt,
	}
}
