// Package directory provides the users-and-categories bounded context module.
package directory

import (
	apphttp "github.com/niketshah083/lead-management-backend-sub002/internal/http"
	"github.com/niketshah083/lead-management-backend-sub002/internal/directory/handler"
	"github.com/niketshah083/lead-management-backend-sub002/internal/directory/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/directory/service"
	"github.com/niketshah083/lead-management-backend-sub002/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the directory bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
	svc     *service.Service
}

// NewModule creates and initializes the directory module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)

	return &Module{
		handler: handler.New(svc, val),
		repo:    repo,
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "directory"
}

// RegisterRoutes mounts user and category administration under /admin.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterUserRoutes(ctx.Admin.Group("/users"))
	m.handler.RegisterCategoryRoutes(ctx.Admin.Group("/categories"))
}

// Repository exposes the directory repository for cross-module wiring
// (the visibility filter reads the reporting tree and category links).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}
