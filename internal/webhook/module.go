package webhook

import (
	"leadsync_backend/internal/events"
	apphttp "leadsync_backend/internal/http"
	"leadsync_backend/internal/webhook/normalizer"
	"leadsync_backend/platform/httpkit"
	"leadsync_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the webhook ingestion module implementing http.Module.
type Module struct {
	handler *Handler
	sources []string
}

// NewModule wires the event log, normalizer and ingestion service.
func NewModule(pool *pgxpool.Pool, resolver TenantResolver, contactCreator ContactCreator, phoneRegion string, eventBus events.Bus, log *logger.Logger) *Module {
	eventRepo := NewEventRepository(pool)
	norm := normalizer.New(phoneRegion)
	service := NewService(resolver, eventRepo, contactCreator, norm, eventBus, log)

	return &Module{
		handler: NewHandler(service, eventRepo, log),
		sources: norm.Sources(),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the public webhook routes and the admin event history.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	inbound := ctx.V1.Group("/webhook")
	if ctx.WebhookRateLimiter != nil {
		inbound.Use(ctx.WebhookRateLimiter.RateLimit())
	}
	inbound.Use(httpkit.MaxBodyBytes(ctx.WebhookMaxBodyBytes))
	for _, source := range m.sources {
		inbound.POST("/"+source, m.handler.ingestFor(source))
	}
	// Catch-all for sources without a dedicated normalizer.
	inbound.POST("/:source", m.handler.HandleIngest)

	history := ctx.Admin.Group("/webhook/events")
	history.GET("", m.handler.HandleListEvents)
	history.GET("/:id", m.handler.HandleGetEvent)
}

var _ apphttp.Module = (*Module)(nil)
