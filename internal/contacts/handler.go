package contacts

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"leadsync_backend/platform/apperr"
	"leadsync_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Reader is the read side of the contact store.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (Contact, error)
	List(ctx context.Context, p ListParams) ([]Contact, error)
}

// Handler serves read access to ingested contacts.
type Handler struct {
	reader Reader
}

// NewHandler creates a new contact handler.
func NewHandler(reader Reader) *Handler {
	return &Handler{reader: reader}
}

// HandleList lists the tenant's contacts.
// GET /api/v1/contacts?source=&limit=
func (h *Handler) HandleList(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpkit.Error(c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		limit = min(parsed, maxListLimit)
	}

	list, err := h.reader.List(c.Request.Context(), ListParams{
		TenantID: tenantID,
		Source:   strings.ToLower(strings.TrimSpace(c.Query("source"))),
		Limit:    limit,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	if list == nil {
		list = []Contact{}
	}
	httpkit.OK(c, list)
}

// HandleGet returns one contact.
// GET /api/v1/contacts/:id
func (h *Handler) HandleGet(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid contact ID", nil)
		return
	}

	contact, err := h.reader.GetByID(c.Request.Context(), id, tenantID)
	if errors.Is(err, ErrContactNotFound) {
		err = apperr.NotFound("contact not found")
	}
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, contact)
}
