package contacts

import (
	apphttp "leadsync_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contacts module implementing http.Module.
type Module struct {
	repo    *Repository
	handler *Handler
}

// NewModule creates the contacts module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := NewRepository(pool)
	return &Module{repo: repo, handler: NewHandler(repo)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contacts"
}

// Repository exposes the store so the webhook module can create contacts.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts the read-only contact routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/contacts")
	group.GET("", m.handler.HandleList)
	group.GET("/:id", m.handler.HandleGet)
}

var _ apphttp.Module = (*Module)(nil)
