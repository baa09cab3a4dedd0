package tenantsecret

import (
	apphttp "leadsync_backend/internal/http"
	"leadsync_backend/platform/logger"
	"leadsync_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the tenant secret module implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule wires the repository, service and admin handler.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	service := NewService(NewRepository(pool), log)
	return &Module{
		service: service,
		handler: NewHandler(service, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tenantsecret"
}

// Service exposes key resolution to the webhook module.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts the admin secret routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	secrets := ctx.Admin.Group("/webhook/secrets")
	secrets.POST("", m.handler.HandleCreate)
	secrets.GET("", m.handler.HandleList)
	secrets.DELETE("/:id", m.handler.HandleDeactivate)
}

var _ apphttp.Module = (*Module)(nil)
