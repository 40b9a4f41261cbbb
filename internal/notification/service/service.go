// Package service turns lifecycle events into in-app notifications and
// breach escalation mail. It subscribes to the bus; nothing here is on the
// request path.
package service

import (
	"context"
	"errors"
	"fmt"

	dirrepo "github.com/niketshah083/lead-management-backend-sub002/internal/directory/repository"
	domevents "github.com/niketshah083/lead-management-backend-sub002/internal/events"
	leadsrepo "github.com/niketshah083/lead-management-backend-sub002/internal/leads/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/notification/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/notification/transport"
	"github.com/niketshah083/lead-management-backend-sub002/internal/scheduler"
	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"
	"github.com/niketshah083/lead-management-backend-sub002/platform/events"
	"github.com/niketshah083/lead-management-backend-sub002/platform/logger"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the notification service.
type Repository interface {
	Insert(ctx context.Context, params repository.InsertParams) (repository.Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]repository.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// DirectoryReader resolves recipients and their managers.
type DirectoryReader interface {
	GetUser(ctx context.Context, id uuid.UUID) (dirrepo.User, error)
}

// LeadReader resolves lead names for alert text.
type LeadReader interface {
	GetLead(ctx context.Context, id uuid.UUID) (leadsrepo.Lead, error)
}

// BreachEmailEnqueuer queues escalation mail. Nil disables email.
type BreachEmailEnqueuer interface {
	EnqueueBreachEmail(ctx context.Context, payload scheduler.BreachEmailPayload) error
}

// Service fans lifecycle events out to notification rows and the mail queue.
type Service struct {
	repo      Repository
	directory DirectoryReader
	leads     LeadReader
	mailer    BreachEmailEnqueuer
	log       *logger.Logger
}

func New(repo Repository, directory DirectoryReader, leads LeadReader, mailer BreachEmailEnqueuer, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		leads:     leads,
		mailer:    mailer,
		log:       log,
	}
}

// Subscribe registers the event handlers on the bus.
func (s *Service) Subscribe(bus events.Bus) {
	bus.Subscribe(domevents.StatusChangedEvent, events.HandlerFunc(s.onStatusChanged))
	bus.Subscribe(domevents.SlaWarningEvent, events.HandlerFunc(s.onSlaWarning))
	bus.Subscribe(domevents.SlaBreachEvent, events.HandlerFunc(s.onSlaBreach))
}

func (s *Service) onStatusChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(domevents.StatusChanged)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventName())
	}

	// The actor already knows; only the owner needs telling.
	if e.AssignedToID == nil || *e.AssignedToID == e.ActorID {
		return nil
	}

	lead := s.leadName(ctx, e.LeadID)
	_, err := s.repo.Insert(ctx, repository.InsertParams{
		UserID: *e.AssignedToID,
		LeadID: &e.LeadID,
		Type:   repository.TypeStatusChanged,
		Title:  "Lead status changed",
		Body:   fmt.Sprintf("Lead %q was moved to a new status.", lead),
	})
	return err
}

func (s *Service) onSlaWarning(ctx context.Context, event events.Event) error {
	e, ok := event.(domevents.SlaWarning)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventName())
	}

	lead := s.leadName(ctx, e.LeadID)
	title := "SLA warning"
	body := fmt.Sprintf("Lead %q is approaching its %s deadline (due %s).",
		lead, humanDimension(e.Dimension), e.Due.Format("Jan 2 15:04"))

	return s.notifyOwnerAndManager(ctx, e.AssignedToID, e.LeadID, repository.TypeSlaWarning, title, body)
}

func (s *Service) onSlaBreach(ctx context.Context, event events.Event) error {
	e, ok := event.(domevents.SlaBreach)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventName())
	}

	lead := s.leadName(ctx, e.LeadID)
	title := "SLA breached"
	body := fmt.Sprintf("Lead %q missed its %s deadline (was due %s).",
		lead, humanDimension(e.Dimension), e.Due.Format("Jan 2 15:04"))

	if err := s.notifyOwnerAndManager(ctx, e.AssignedToID, e.LeadID, repository.TypeSlaBreach, title, body); err != nil {
		return err
	}

	if s.mailer == nil || e.AssignedToID == nil {
		return nil
	}

	owner, err := s.directory.GetUser(ctx, *e.AssignedToID)
	if err != nil {
		s.log.Warn("breach email skipped, owner lookup failed", "user_id", *e.AssignedToID, "error", err)
		return nil
	}

	return s.mailer.EnqueueBreachEmail(ctx, scheduler.BreachEmailPayload{
		LeadID:    e.LeadID,
		LeadName:  lead,
		To:        owner.Email,
		ToName:    owner.FirstName + " " + owner.LastName,
		Dimension: e.Dimension,
		Due:       e.Due,
	})
}

// notifyOwnerAndManager writes a row for the lead's owner and, when the
// owner reports to someone, one for the manager as well.
func (s *Service) notifyOwnerAndManager(ctx context.Context, ownerID *uuid.UUID, leadID uuid.UUID, kind, title, body string) error {
	if ownerID == nil {
		return nil
	}

	if _, err := s.repo.Insert(ctx, repository.InsertParams{
		UserID: *ownerID,
		LeadID: &leadID,
		Type:   kind,
		Title:  title,
		Body:   body,
	}); err != nil {
		return err
	}

	owner, err := s.directory.GetUser(ctx, *ownerID)
	if err != nil || owner.ManagerID == nil {
		return nil
	}

	_, err = s.repo.Insert(ctx, repository.InsertParams{
		UserID: *owner.ManagerID,
		LeadID: &leadID,
		Type:   kind,
		Title:  title,
		Body:   body,
	})
	return err
}

func (s *Service) leadName(ctx context.Context, leadID uuid.UUID) string {
	lead, err := s.leads.GetLead(ctx, leadID)
	if err != nil {
		return leadID.String()
	}
	return lead.Name
}

func humanDimension(dimension string) string {
	switch dimension {
	case "FIRST_RESPONSE":
		return "first response"
	case "RESOLUTION":
		return "resolution"
	default:
		return dimension
	}
}

// List returns the user's notifications.
func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]transport.NotificationResponse, error) {
	notifications, err := s.repo.ListForUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, transport.NotificationResponse{
			ID:        n.ID,
			LeadID:    n.LeadID,
			Type:      n.Type,
			Title:     n.Title,
			Body:      n.Body,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}
	return responses, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("notification not found")
		}
		return err
	}
	return nil
}

// MarkAllRead marks every unread notification for the user.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
