// Package notification provides the alerting bounded context: in-app
// notification rows fed by lifecycle events, plus breach email escalation
// through the task queue.
package notification

import (
	apphttp "github.com/niketshah083/lead-management-backend-sub002/internal/http"
	"github.com/niketshah083/lead-management-backend-sub002/internal/notification/handler"
	"github.com/niketshah083/lead-management-backend-sub002/internal/notification/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/notification/service"
	"github.com/niketshah083/lead-management-backend-sub002/platform/events"
	"github.com/niketshah083/lead-management-backend-sub002/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the notification bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates the notification module and subscribes it to the bus.
// Pass a nil mailer to run without email escalation.
func NewModule(
	pool *pgxpool.Pool,
	bus events.Bus,
	directory service.DirectoryReader,
	leads service.LeadReader,
	mailer service.BreachEmailEnqueuer,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, directory, leads, mailer, log)
	svc.Subscribe(bus)

	return &Module{
		handler: handler.New(svc),
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// RegisterRoutes mounts the notification inbox under the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/notifications"))
}

// Service exposes the event subscriber for processes that run without HTTP.
func (m *Module) Service() *service.Service {
	return m.svc
}
