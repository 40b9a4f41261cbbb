// Package leads provides the lead bounded context: the portfolio itself and
// the lifecycle coordinator that governs every mutation on it.
package leads

import (
	apphttp "github.com/niketshah083/lead-management-backend-sub002/internal/http"
	"github.com/niketshah083/lead-management-backend-sub002/internal/leads/handler"
	"github.com/niketshah083/lead-management-backend-sub002/internal/leads/lifecycle"
	"github.com/niketshah083/lead-management-backend-sub002/internal/leads/repository"
	"github.com/niketshah083/lead-management-backend-sub002/platform/events"
	"github.com/niketshah083/lead-management-backend-sub002/platform/logger"
	"github.com/niketshah083/lead-management-backend-sub002/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	coord   *lifecycle.Coordinator
	repo    *repository.Repository
}

// NewModule creates and initializes the leads module. The status graph,
// timing source and visibility filter come from their owning modules.
func NewModule(
	pool *pgxpool.Pool,
	val *validator.Validator,
	graph lifecycle.StatusGraph,
	timing lifecycle.TimingSource,
	vis lifecycle.VisibilityFilter,
	bus events.Bus,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	coord := lifecycle.NewCoordinator(repo, graph, timing, vis, bus, log)

	return &Module{
		handler: handler.New(coord, val),
		coord:   coord,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts the lead surface under the authenticated group.
// Visibility is enforced per request inside the coordinator, not by route
// grouping.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Coordinator exposes the lifecycle coordinator for the sweep runner.
func (m *Module) Coordinator() *lifecycle.Coordinator {
	return m.coord
}

// Repository exposes lead reads for collaborators that render alert text.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}
