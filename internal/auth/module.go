package auth

import (
	apphttp "github.com/niketshah083/lead-management-backend-sub002/internal/http"
	"github.com/niketshah083/lead-management-backend-sub002/platform/config"
	"github.com/niketshah083/lead-management-backend-sub002/platform/logger"
	"github.com/niketshah083/lead-management-backend-sub002/platform/validator"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the auth module.
func NewModule(users UserReader, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := NewService(users, cfg, log)
	return &Module{handler: NewHandler(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts the login endpoint on the public group behind the
// stricter auth rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/auth")
	group.Use(ctx.AuthRateLimiter.RateLimit())
	group.POST("/login", m.handler.Login)
}
