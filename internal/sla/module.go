// Package sla provides the timing bounded context: policies, per-lead
// trackings and the deadline evaluator behind warning and breach alerts.
package sla

import (
	apphttp "github.com/niketshah083/lead-management-backend-sub002/internal/http"
	"github.com/niketshah083/lead-management-backend-sub002/internal/sla/handler"
	"github.com/niketshah083/lead-management-backend-sub002/internal/sla/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/sla/service"
	"github.com/niketshah083/lead-management-backend-sub002/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the sla bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
	svc     *service.Service
}

// NewModule creates and initializes the sla module.
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
	return "sla"
}

// RegisterRoutes mounts policy administration under /admin.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPolicyRoutes(ctx.Admin.Group("/sla-policies"))
}

// Service exposes policy lookup and tracking views for the leads module.
func (m *Module) Service() *service.Service {
	return m.svc
}

// Repository exposes sweep reads and monotonic flag writes for the
// scheduler's breach sweep.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}
