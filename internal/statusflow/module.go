// Package statusflow provides the status graph bounded context: the
// configurable set of pipeline statuses and the directed, role-gated
// transitions between them.
package statusflow

import (
	apphttp "github.com/niketshah083/lead-management-backend-sub002/internal/http"
	"github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/handler"
	"github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/service"
	"github.com/niketshah083/lead-management-backend-sub002/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the statusflow bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the statusflow module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)

	return &Module{
		handler: handler.New(svc, val),
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "statusflow"
}

// RegisterRoutes mounts status and transition administration under /admin
// and the read-only status views under the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterStatusRoutes(ctx.Admin.Group("/statuses"))
	m.handler.RegisterTransitionRoutes(ctx.Admin.Group("/transitions"))
	m.handler.RegisterReadRoutes(ctx.Protected)
}

// Service exposes the transition guard for the lifecycle coordinator.
func (m *Module) Service() *service.Service {
	return m.svc
}
