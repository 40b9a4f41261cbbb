// Package service contains the directory business logic: user and category
// administration plus the reporting-tree rules that visibility scoping
// depends on.
package service

import (
	"context"
	"errors"

	"github.com/niketshah083/lead-management-backend-sub002/internal/directory/domain"
	"github.com/niketshah083/lead-management-backend-sub002/internal/directory/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/directory/transport"
	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"
	"github.com/niketshah083/lead-management-backend-sub002/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Repository defines the data access interface needed by the directory service.
type Repository interface {
	CreateUser(ctx context.Context, params repository.CreateUserParams) (repository.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (repository.User, error)
	ListUsers(ctx context.Context) ([]repository.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, params repository.UpdateUserParams) (repository.User, error)
	ReplaceUserCategories(ctx context.Context, userID uuid.UUID, categoryIDs []uuid.UUID) error
	ListUserCategoryIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	CreateCategory(ctx context.Context, name string) (repository.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (repository.Category, error)
	ListCategories(ctx context.Context) ([]repository.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, params repository.UpdateCategoryParams) (repository.Category, error)
	SoftDeleteCategory(ctx context.Context, id uuid.UUID) error
}

// Service handles directory administration.
type Service struct {
	repo Repository
}

// New creates a new directory service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateUser creates a user record with a hashed password. Executives must
// report to an active Manager; Admins and Managers report to no one.
func (s *Service) CreateUser(ctx context.Context, req transport.CreateUserRequest) (transport.UserResponse, error) {
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return transport.UserResponse{}, apperr.Validation("unknown role")
	}

	managerID, err := s.resolveManager(ctx, role, req.ManagerID)
	if err != nil {
		return transport.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return transport.UserResponse{}, apperr.Internal("failed to hash password")
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        phone.NormalizeE164(req.Phone),
		Role:         role,
		ManagerID:    managerID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return transport.UserResponse{}, apperr.Conflict("email already in use")
		}
		return transport.UserResponse{}, err
	}

	return toUserResponse(user), nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (transport.UserResponse, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.UserResponse{}, apperr.NotFound("user not found")
		}
		return transport.UserResponse{}, err
	}

	return toUserResponse(user), nil
}

// ListUsers lists all users.
func (s *Service) ListUsers(ctx context.Context) ([]transport.UserResponse, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}
	return responses, nil
}

// UpdateUser updates user attributes, revalidating the reporting-tree rules
// when the role or manager changes.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req transport.UpdateUserRequest) (transport.UserResponse, error) {
	current, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.UserResponse{}, apperr.NotFound("user not found")
		}
		return transport.UserResponse{}, err
	}

	params := repository.UpdateUserParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}

	targetRole := current.Role
	if req.Role != nil {
		role, ok := domain.ParseRole(*req.Role)
		if !ok {
			return transport.UserResponse{}, apperr.Validation("unknown role")
		}
		targetRole = role
		params.Role = &role
	}

	switch {
	case req.ClearManager:
		if targetRole == domain.RoleExecutive {
			return transport.UserResponse{}, apperr.Validation("executives must report to a manager")
		}
		params.ClearManager = true
	case req.ManagerID != nil || req.Role != nil:
		rawManager := req.ManagerID
		if rawManager == nil && current.ManagerID != nil {
			text := current.ManagerID.String()
			rawManager = &text
		}
		managerID, err := s.resolveManager(ctx, targetRole, rawManager)
		if err != nil {
			return transport.UserResponse{}, err
		}
		params.ManagerID = managerID
		params.ClearManager = managerID == nil
	}

	user, err := s.repo.UpdateUser(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.UserResponse{}, apperr.NotFound("user not found")
		}
		return transport.UserResponse{}, err
	}

	return toUserResponse(user), nil
}

// AssignCategories replaces an executive's category assignments. Categories
// gate which unassigned leads the executive can see.
func (s *Service) AssignCategories(ctx context.Context, userID uuid.UUID, req transport.AssignCategoriesRequest) (transport.UserCategoriesResponse, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return transport.UserCategoriesResponse{}, err
	}

	categoryIDs := make([]uuid.UUID, 0, len(req.CategoryIDs))
	for _, raw := range req.CategoryIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return transport.UserCategoriesResponse{}, apperr.Validation("invalid category id")
		}
		if _, err := s.repo.GetCategory(ctx, id); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return transport.UserCategoriesResponse{}, apperr.NotFound("category not found")
			}
			return transport.UserCategoriesResponse{}, err
		}
		categoryIDs = append(categoryIDs, id)
	}

	if err := s.repo.ReplaceUserCategories(ctx, userID, categoryIDs); err != nil {
		return transport.UserCategoriesResponse{}, err
	}

	assigned, err := s.repo.ListUserCategoryIDs(ctx, userID)
	if err != nil {
		return transport.UserCategoriesResponse{}, err
	}

	return transport.UserCategoriesResponse{UserID: userID, CategoryIDs: assigned}, nil
}

func (s *Service) resolveManager(ctx context.Context, role domain.Role, rawManagerID *string) (*uuid.UUID, error) {
	if role != domain.RoleExecutive {
		if rawManagerID != nil {
			return nil, apperr.Validation("only executives report to a manager")
		}
		return nil, nil
	}

	if rawManagerID == nil {
		return nil, apperr.Validation("executives must report to a manager")
	}

	managerID, err := uuid.Parse(*rawManagerID)
	if err != nil {
		return nil, apperr.Validation("invalid manager id")
	}

	manager, err := s.repo.GetUser(ctx, managerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("manager not found")
		}
		return nil, err
	}
	if manager.Role != domain.RoleManager || !manager.IsActive {
		return nil, apperr.Validation("manager must be an active Manager")
	}

	return &managerID, nil
}

func toUserResponse(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Role:      string(user.Role),
		ManagerID: user.ManagerID,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
