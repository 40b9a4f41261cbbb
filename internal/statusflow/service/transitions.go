package service

import (
	"context"
	"errors"

	dirdomain "github.com/niketshah083/lead-management-backend-sub002/internal/directory/domain"
	"github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/transport"
	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"

	"github.com/google/uuid"
)

// CreateTransition creates a single directed edge between two statuses.
func (s *Service) CreateTransition(ctx context.Context, req transport.CreateTransitionRequest) (transport.TransitionResponse, error) {
	params, err := s.buildTransitionParams(ctx, req.FromStatusID, req.ToStatusID, req.RequiresComment, req.AllowedRoles)
	if err != nil {
		return transport.TransitionResponse{}, err
	}

	transition, err := s.repo.CreateTransition(ctx, *params)
	if err != nil {
		return transport.TransitionResponse{}, mapTransitionError(err)
	}

	return toTransitionResponse(transition), nil
}

// CreateTransitionsBulk creates edges from one status to many targets.
// The write is all-or-nothing: a duplicate or unknown target rolls back
// every edge in the batch.
func (s *Service) CreateTransitionsBulk(ctx context.Context, req transport.BulkCreateTransitionsRequest) ([]transport.TransitionResponse, error) {
	params := make([]repository.CreateTransitionParams, 0, len(req.ToStatusIDs))
	for _, rawTo := range req.ToStatusIDs {
		p, err := s.buildTransitionParams(ctx, req.FromStatusID, rawTo, req.RequiresComment, req.AllowedRoles)
		if err != nil {
			return nil, err
		}
		params = append(params, *p)
	}

	transitions, err := s.repo.CreateTransitionsBulk(ctx, params)
	if err != nil {
		return nil, mapTransitionError(err)
	}

	responses := make([]transport.TransitionResponse, 0, len(transitions))
	for _, transition := range transitions {
		responses = append(responses, toTransitionResponse(transition))
	}
	return responses, nil
}

// ListTransitions lists all configured edges.
func (s *Service) ListTransitions(ctx context.Context) ([]transport.TransitionResponse, error) {
	transitions, err := s.repo.ListTransitions(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.TransitionResponse, 0, len(transitions))
	for _, transition := range transitions {
		responses = append(responses, toTransitionResponse(transition))
	}
	return responses, nil
}

// ListTransitionsFrom lists the active edges leaving a status.
func (s *Service) ListTransitionsFrom(ctx context.Context, fromStatusID uuid.UUID) ([]transport.TransitionResponse, error) {
	transitions, err := s.repo.ListTransitionsFrom(ctx, fromStatusID)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.TransitionResponse, 0, len(transitions))
	for _, transition := range transitions {
		responses = append(responses, toTransitionResponse(transition))
	}
	return responses, nil
}

// UpdateTransition updates an edge's flags or role restriction.
func (s *Service) UpdateTransition(ctx context.Context, id uuid.UUID, req transport.UpdateTransitionRequest) (transport.TransitionResponse, error) {
	if req.AllowedRoles != nil {
		if err := validateRoles(*req.AllowedRoles); err != nil {
			return transport.TransitionResponse{}, err
		}
	}

	transition, err := s.repo.UpdateTransition(ctx, id, repository.UpdateTransitionParams{
		IsActive:        req.IsActive,
		RequiresComment: req.RequiresComment,
		AllowedRoles:    req.AllowedRoles,
	})
	if err != nil {
		return transport.TransitionResponse{}, mapTransitionError(err)
	}

	return toTransitionResponse(transition), nil
}

// DeleteTransition removes an edge.
func (s *Service) DeleteTransition(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteTransition(ctx, id); err != nil {
		return mapTransitionError(err)
	}
	return nil
}

func (s *Service) buildTransitionParams(ctx context.Context, rawFrom, rawTo string, requiresComment bool, allowedRoles []string) (*repository.CreateTransitionParams, error) {
	fromID, err := uuid.Parse(rawFrom)
	if err != nil {
		return nil, apperr.Validation("invalid fromStatusId")
	}
	toID, err := uuid.Parse(rawTo)
	if err != nil {
		return nil, apperr.Validation("invalid toStatusId")
	}
	if fromID == toID {
		return nil, apperr.Validation("a transition cannot loop back to its own status")
	}

	if err := validateRoles(allowedRoles); err != nil {
		return nil, err
	}

	for _, id := range []uuid.UUID{fromID, toID} {
		if _, err := s.repo.GetStatus(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.NotFound("status not found")
			}
			return nil, err
		}
	}

	return &repository.CreateTransitionParams{
		FromStatusID:    fromID,
		ToStatusID:      toID,
		RequiresComment: requiresComment,
		AllowedRoles:    allowedRoles,
	}, nil
}

func validateRoles(raw []string) error {
	for _, text := range raw {
		if _, ok := dirdomain.ParseRole(text); !ok {
			return apperr.Validation("unknown role in allowedRoles")
		}
	}
	return nil
}

func mapTransitionError(err error) error {
	switch {
	case errors.Is(err, repository.ErrTransitionNotFound):
		return apperr.NotFound("transition not found")
	case errors.Is(err, repository.ErrDuplicateTransition):
		return apperr.Conflict("transition already exists for status pair")
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("status not found")
	default:
		return err
	}
}

func toTransitionResponse(transition repository.StatusTransition) transport.TransitionResponse {
	return transport.TransitionResponse{
		ID:              transition.ID,
		FromStatusID:    transition.FromStatusID,
		ToStatusID:      transition.ToStatusID,
		IsActive:        transition.IsActive,
		RequiresComment: transition.RequiresComment,
		AllowedRoles:    transition.AllowedRoles,
		CreatedAt:       transition.CreatedAt,
		UpdatedAt:       transition.UpdatedAt,
	}
}
