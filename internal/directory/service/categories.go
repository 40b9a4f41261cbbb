package service

import (
	"context"
	"errors"

	"github.com/niketshah083/lead-management-backend-sub002/internal/directory/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/directory/transport"
	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"

	"github.com/google/uuid"
)

// CreateCategory creates a lead category.
func (s *Service) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (transport.CategoryResponse, error) {
	category, err := s.repo.CreateCategory(ctx, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCategory) {
			return transport.CategoryResponse{}, apperr.Conflict("category name already in use")
		}
		return transport.CategoryResponse{}, err
	}

	return toCategoryResponse(category), nil
}

// ListCategories lists non-deleted categories.
func (s *Service) ListCategories(ctx context.Context) ([]transport.CategoryResponse, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, toCategoryResponse(category))
	}
	return responses, nil
}

// UpdateCategory updates a category's name or active flag.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, req transport.UpdateCategoryRequest) (transport.CategoryResponse, error) {
	category, err := s.repo.UpdateCategory(ctx, id, repository.UpdateCategoryParams{
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return transport.CategoryResponse{}, apperr.NotFound("category not found")
		}
		if errors.Is(err, repository.ErrDuplicateCategory) {
			return transport.CategoryResponse{}, apperr.Conflict("category name already in use")
		}
		return transport.CategoryResponse{}, err
	}

	return toCategoryResponse(category), nil
}

// DeleteCategory soft-deletes a category.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDeleteCategory(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperr.NotFound("category not found")
		}
		return err
	}
	return nil
}

func toCategoryResponse(category repository.Category) transport.CategoryResponse {
	return transport.CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		IsActive:  category.IsActive,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}
