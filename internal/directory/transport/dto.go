package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type CreateUserRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	FirstName string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string  `json:"lastName" validate:"required,min=1,max=100"`
	Phone     string  `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Role      string  `json:"role" validate:"required,oneof=Admin Manager Executive"`
	ManagerID *string `json:"managerId,omitempty" validate:"omitempty,uuid4"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=Admin Manager Executive"`
	ManagerID *string `json:"managerId,omitempty" validate:"omitempty,uuid4"`
	// ClearManager removes the manager link; used when promoting an
	// executive to manager.
	ClearManager bool  `json:"clearManager,omitempty"`
	IsActive     *bool `json:"isActive,omitempty"`
}

type AssignCategoriesRequest struct {
	CategoryIDs []string `json:"categoryIds" validate:"required,dive,uuid4"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// Response DTOs
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Phone     string     `json:"phone,omitempty"`
	Role      string     `json:"role"`
	ManagerID *uuid.UUID `json:"managerId,omitempty"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserCategoriesResponse struct {
	UserID      uuid.UUID   `json:"userId"`
	CategoryIDs []uuid.UUID `json:"categoryIds"`
}
