package voicesync

import (
	"leadsync_backend/internal/events"
	apphttp "leadsync_backend/internal/http"
	"leadsync_backend/platform/logger"
	"leadsync_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the voice reconciliation module implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule wires the repository, service and handler. remote is nil when the
// platform is not configured; enqueuer is nil when no queue is available.
func NewModule(pool *pgxpool.Pool, remote Remote, enqueuer Enqueuer, eventBus events.Bus, phoneRegion string, val *validator.Validator, log *logger.Logger) *Module {
	service := NewService(remote, NewRepository(pool), eventBus, phoneRegion, log)
	return &Module{
		service: service,
		handler: NewHandler(service, enqueuer, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "voicesync"
}

// Service exposes the reconciliation engine to the scheduler and CLI.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts the voice routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	voice := ctx.Protected.Group("/voice")

	sync := voice.Group("/sync")
	sync.POST("", m.handler.HandleSyncAll)
	sync.POST("/agents", m.handler.HandleSyncAgents)
	sync.POST("/calls", m.handler.HandleSyncCalls)
	sync.POST("/calls/:callId", m.handler.HandleImportCall)
	sync.POST("/phone-numbers", m.handler.HandleSyncPhoneNumbers)

	agents := voice.Group("/agents")
	agents.GET("", m.handler.HandleListAgents)
	agents.POST("", m.handler.HandleCreateAgent)
	agents.PATCH("/:id", m.handler.HandleUpdateAgent)
	agents.DELETE("/:id", m.handler.HandleDeleteAgent)

	phones := voice.Group("/phone-numbers")
	phones.GET("", m.handler.HandleListPhoneNumbers)
	phones.POST("", m.handler.HandleProvisionPhoneNumber)
}

var _ apphttp.Module = (*Module)(nil)
