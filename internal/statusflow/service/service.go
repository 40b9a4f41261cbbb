// Package service contains the status-graph business logic: status and
// transition administration, and the transition guard consulted by the
// lifecycle coordinator before any status change.
package service

import (
	"context"
	"errors"

	dirdomain "github.com/niketshah083/lead-management-backend-sub002/internal/directory/domain"
	"github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/domain"
	"github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/transport"
	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the statusflow service.
type Repository interface {
	CreateStatus(ctx context.Context, params repository.CreateStatusParams) (repository.LeadStatus, error)
	GetStatus(ctx context.Context, id uuid.UUID) (repository.LeadStatus, error)
	ListActiveStatuses(ctx context.Context) ([]repository.LeadStatus, error)
	GetInitialStatus(ctx context.Context) (repository.LeadStatus, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, params repository.UpdateStatusParams) (repository.LeadStatus, error)
	SoftDeleteStatus(ctx context.Context, id uuid.UUID) error
	ReorderStatuses(ctx context.Context, orderedIDs []uuid.UUID) error

	CreateTransition(ctx context.Context, params repository.CreateTransitionParams) (repository.StatusTransition, error)
	CreateTransitionsBulk(ctx context.Context, params []repository.CreateTransitionParams) ([]repository.StatusTransition, error)
	GetTransition(ctx context.Context, fromStatusID, toStatusID uuid.UUID) (repository.StatusTransition, error)
	ListTransitions(ctx context.Context) ([]repository.StatusTransition, error)
	ListTransitionsFrom(ctx context.Context, fromStatusID uuid.UUID) ([]repository.StatusTransition, error)
	UpdateTransition(ctx context.Context, id uuid.UUID, params repository.UpdateTransitionParams) (repository.StatusTransition, error)
	DeleteTransition(ctx context.Context, id uuid.UUID) error
}

// Service handles status graph operations.
type Service struct {
	repo Repository
}

// New creates a new statusflow service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// IsTransitionAllowed evaluates the guard for an ordered status pair and an
// acting role. A missing edge denies the move; the decision is a pure
// function of the stored edge and the role.
func (s *Service) IsTransitionAllowed(ctx context.Context, fromStatusID, toStatusID uuid.UUID, actingRole dirdomain.Role) (domain.Decision, error) {
	transition, err := s.repo.GetTransition(ctx, fromStatusID, toStatusID)
	if err != nil {
		if errors.Is(err, repository.ErrTransitionNotFound) {
			return domain.Decide(nil, actingRole), nil
		}
		return domain.Decision{}, err
	}

	return domain.Decide(toEdge(transition), actingRole), nil
}

func toEdge(transition repository.StatusTransition) *domain.Edge {
	roles := make([]dirdomain.Role, 0, len(transition.AllowedRoles))
	for _, raw := range transition.AllowedRoles {
		roles = append(roles, dirdomain.Role(raw))
	}

	return &domain.Edge{
		FromStatusID:    transition.FromStatusID,
		ToStatusID:      transition.ToStatusID,
		IsActive:        transition.IsActive,
		RequiresComment: transition.RequiresComment,
		AllowedRoles:    dirdomain.NewRoleSet(roles...),
	}
}

// InitialStatus returns the unique entry status assigned to new leads.
func (s *Service) InitialStatus(ctx context.Context) (transport.StatusResponse, error) {
	status, err := s.repo.GetInitialStatus(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.StatusResponse{}, apperr.Conflict("no initial status configured")
		}
		return transport.StatusResponse{}, err
	}

	return toStatusResponse(status), nil
}

// CreateStatus creates a pipeline status.
func (s *Service) CreateStatus(ctx context.Context, req transport.CreateStatusRequest) (transport.StatusResponse, error) {
	status, err := s.repo.CreateStatus(ctx, repository.CreateStatusParams{
		Name:       req.Name,
		Rank:       req.Rank,
		IsInitial:  req.IsInitial,
		IsFinal:    req.IsFinal,
		StatusType: req.StatusType,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return transport.StatusResponse{}, apperr.Conflict("status name already in use")
		}
		return transport.StatusResponse{}, err
	}

	return toStatusResponse(status), nil
}

// GetStatus retrieves a status by ID.
func (s *Service) GetStatus(ctx context.Context, id uuid.UUID) (transport.StatusResponse, error) {
	status, err := s.repo.GetStatus(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.StatusResponse{}, apperr.NotFound("status not found")
		}
		return transport.StatusResponse{}, err
	}

	return toStatusResponse(status), nil
}

// ListStatuses lists active statuses ordered by rank.
func (s *Service) ListStatuses(ctx context.Context) ([]transport.StatusResponse, error) {
	statuses, err := s.repo.ListActiveStatuses(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.StatusResponse, 0, len(statuses))
	for _, status := range statuses {
		responses = append(responses, toStatusResponse(status))
	}
	return responses, nil
}

// UpdateStatus updates a status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateStatusRequest) (transport.StatusResponse, error) {
	if req.IsInitial != nil && !*req.IsInitial {
		current, err := s.repo.GetStatus(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return transport.StatusResponse{}, apperr.NotFound("status not found")
			}
			return transport.StatusResponse{}, err
		}
		// Demoting the sole initial status would leave new leads without an
		// entry point; require promoting another status instead.
		if current.IsInitial {
			return transport.StatusResponse{}, apperr.Validation("cannot unset the initial status directly; mark another status initial")
		}
	}

	status, err := s.repo.UpdateStatus(ctx, id, repository.UpdateStatusParams{
		Name:       req.Name,
		IsInitial:  req.IsInitial,
		IsFinal:    req.IsFinal,
		StatusType: req.StatusType,
		ClearType:  req.ClearType,
		IsActive:   req.IsActive,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.StatusResponse{}, apperr.NotFound("status not found")
		}
		if errors.Is(err, repository.ErrDuplicateName) {
			return transport.StatusResponse{}, apperr.Conflict("status name already in use")
		}
		return transport.StatusResponse{}, err
	}

	return toStatusResponse(status), nil
}

// DeleteStatus soft-deletes a status and deactivates its transitions.
// The initial status cannot be deleted: new leads would have no entry point.
func (s *Service) DeleteStatus(ctx context.Context, id uuid.UUID) error {
	status, err := s.repo.GetStatus(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("status not found")
		}
		return err
	}
	if status.IsInitial {
		return apperr.Validation("cannot delete the initial status")
	}

	if err := s.repo.SoftDeleteStatus(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("status not found")
		}
		return err
	}

	return nil
}

// ReorderStatuses rewrites status ranks in the given order and returns the
// resulting list.
func (s *Service) ReorderStatuses(ctx context.Context, req transport.ReorderStatusesRequest) ([]transport.StatusResponse, error) {
	ids := make([]uuid.UUID, 0, len(req.StatusIDs))
	for _, raw := range req.StatusIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperr.Validation("invalid status id")
		}
		ids = append(ids, id)
	}

	if err := s.repo.ReorderStatuses(ctx, ids); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("status not found")
		}
		return nil, err
	}

	return s.ListStatuses(ctx)
}

func toStatusResponse(status repository.LeadStatus) transport.StatusResponse {
	return transport.StatusResponse{
		ID:         status.ID,
		Name:       status.Name,
		Rank:       status.Rank,
		IsInitial:  status.IsInitial,
		IsFinal:    status.IsFinal,
		StatusType: status.StatusType,
		IsActive:   status.IsActive,
		CreatedAt:  status.CreatedAt,
		UpdatedAt:  status.UpdatedAt,
	}
}
