// Package service exposes policy administration and tracking views over the
// timing domain.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/niketshah083/lead-management-backend-sub002/internal/sla/domain"
	"github.com/niketshah083/lead-management-backend-sub002/internal/sla/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/sla/transport"
	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the sla service.
type Repository interface {
	CreatePolicy(ctx context.Context, params repository.CreatePolicyParams) (domain.Policy, error)
	GetPolicy(ctx context.Context, id uuid.UUID) (domain.Policy, error)
	GetDefaultPolicy(ctx context.Context) (domain.Policy, error)
	ListPolicies(ctx context.Context) ([]domain.Policy, error)
	UpdatePolicy(ctx context.Context, id uuid.UUID, params repository.UpdatePolicyParams) (domain.Policy, error)
	GetTracking(ctx context.Context, leadID uuid.UUID) (domain.Tracking, error)
}

// Service handles policy administration and tracking reads.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a new sla service. The clock defaults to time.Now.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock overrides the clock source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreatePolicy creates a timing policy.
func (s *Service) CreatePolicy(ctx context.Context, req transport.CreatePolicyRequest) (transport.PolicyResponse, error) {
	policy, err := s.repo.CreatePolicy(ctx, repository.CreatePolicyParams{
		Name:                    req.Name,
		FirstResponseMinutes:    req.FirstResponseMinutes,
		FollowUpMinutes:         req.FollowUpMinutes,
		ResolutionMinutes:       req.ResolutionMinutes,
		WarningThresholdPercent: req.WarningThresholdPercent,
		IsDefault:               req.IsDefault,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePolicy) {
			return transport.PolicyResponse{}, apperr.Conflict("policy name already in use")
		}
		return transport.PolicyResponse{}, err
	}

	return toPolicyResponse(policy), nil
}

// GetPolicy retrieves a policy by ID.
func (s *Service) GetPolicy(ctx context.Context, id uuid.UUID) (transport.PolicyResponse, error) {
	policy, err := s.repo.GetPolicy(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPolicyNotFound) {
			return transport.PolicyResponse{}, apperr.NotFound("policy not found")
		}
		return transport.PolicyResponse{}, err
	}

	return toPolicyResponse(policy), nil
}

// ListPolicies lists all policies.
func (s *Service) ListPolicies(ctx context.Context) ([]transport.PolicyResponse, error) {
	policies, err := s.repo.ListPolicies(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.PolicyResponse, 0, len(policies))
	for _, policy := range policies {
		responses = append(responses, toPolicyResponse(policy))
	}
	return responses, nil
}

// UpdatePolicy patches a policy.
func (s *Service) UpdatePolicy(ctx context.Context, id uuid.UUID, req transport.UpdatePolicyRequest) (transport.PolicyResponse, error) {
	policy, err := s.repo.UpdatePolicy(ctx, id, repository.UpdatePolicyParams{
		Name:                    req.Name,
		FirstResponseMinutes:    req.FirstResponseMinutes,
		FollowUpMinutes:         req.FollowUpMinutes,
		ResolutionMinutes:       req.ResolutionMinutes,
		WarningThresholdPercent: req.WarningThresholdPercent,
		IsDefault:               req.IsDefault,
		IsActive:                req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPolicyNotFound):
			return transport.PolicyResponse{}, apperr.NotFound("policy not found")
		case errors.Is(err, repository.ErrDuplicatePolicy):
			return transport.PolicyResponse{}, apperr.Conflict("policy name already in use")
		}
		return transport.PolicyResponse{}, err
	}

	return toPolicyResponse(policy), nil
}

// DefaultPolicy returns the policy applied to newly created leads.
func (s *Service) DefaultPolicy(ctx context.Context) (domain.Policy, error) {
	policy, err := s.repo.GetDefaultPolicy(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoDefaultPolicy) {
			return domain.Policy{}, apperr.Conflict("no default sla policy configured")
		}
		return domain.Policy{}, err
	}
	return policy, nil
}

// GetLeadTracking returns a lead's tracking with its live classification.
func (s *Service) GetLeadTracking(ctx context.Context, leadID uuid.UUID) (transport.TrackingResponse, error) {
	tracking, err := s.repo.GetTracking(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrTrackingNotFound) {
			return transport.TrackingResponse{}, apperr.NotFound("sla tracking not found")
		}
		return transport.TrackingResponse{}, err
	}

	return ToTrackingResponse(tracking, s.now()), nil
}

// ToTrackingResponse maps a tracking plus its evaluation at the given
// instant onto the transport shape.
func ToTrackingResponse(tracking domain.Tracking, now time.Time) transport.TrackingResponse {
	eval := domain.Evaluate(tracking, now)
	return transport.TrackingResponse{
		ID:                    tracking.ID,
		LeadID:                tracking.LeadID,
		PolicyID:              tracking.PolicyID,
		StartedAt:             tracking.StartedAt,
		FirstResponseDue:      tracking.FirstResponseDue,
		FirstResponseAt:       tracking.FirstResponseAt,
		FirstResponseBreached: tracking.FirstResponseBreached,
		ResolutionDue:         tracking.ResolutionDue,
		ResolvedAt:            tracking.ResolvedAt,
		ResolutionBreached:    tracking.ResolutionBreached,
		State:                 string(eval.State),
		Dimension:             string(eval.Dimension),
	}
}

func toPolicyResponse(policy domain.Policy) transport.PolicyResponse {
	return transport.PolicyResponse{
		ID:                      policy.ID,
		Name:                    policy.Name,
		FirstResponseMinutes:    policy.FirstResponseMinutes,
		FollowUpMinutes:         policy.FollowUpMinutes,
		ResolutionMinutes:       policy.ResolutionMinutes,
		WarningThresholdPercent: policy.WarningThresholdPercent,
		IsDefault:               policy.IsDefault,
		IsActive:                policy.IsActive,
		CreatedAt:               policy.CreatedAt,
		UpdatedAt:               policy.UpdatedAt,
	}
}
