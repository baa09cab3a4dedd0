package webhook

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"leadsync_backend/platform/apperr"
	"leadsync_backend/platform/httpkit"
	"leadsync_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// KeyQueryParam and KeyHeader carry the tenant webhook key.
	KeyQueryParam = "key"
	KeyHeader     = "X-Webhook-Key"

	errUnauthorized = "unauthorized"
	errInternal     = "internal server error"

	defaultEventLimit = 50
	maxEventLimit     = 200
)

// EventReader is the read side of the event log.
type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (Event, error)
	List(ctx context.Context, p ListEventsParams) ([]Event, error)
}

// Handler handles webhook HTTP requests.
type Handler struct {
	service *Service
	events  EventReader
	log     *logger.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service, eventReader EventReader, log *logger.Logger) *Handler {
	return &Handler{service: service, events: eventReader, log: log}
}

// ---- Inbound webhooks (public, key authenticated) ----

// HandleIngest accepts a lead delivery for the :source path segment.
// POST /api/v1/webhook/:source
func (h *Handler) HandleIngest(c *gin.Context) {
	h.ingest(c, c.Param("source"))
}

// ingestFor binds a fixed source name to the ingestion handler.
func (h *Handler) ingestFor(source string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.ingest(c, source)
	}
}

func (h *Handler) ingest(c *gin.Context, source string) {
	key, ok := candidateKey(c)
	if !ok {
		h.log.WebhookRejected(source, c.ClientIP(), "missing key")
	}

	result, err := h.service.Ingest(c.Request.Context(), IngestRequest{
		Key:    key,
		Source: source,
		Body:   c.Request.Body,
	})
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			if ok {
				h.log.WebhookRejected(source, c.ClientIP(), "invalid key")
			}
			httpkit.Error(c, http.StatusUnauthorized, errUnauthorized, nil)
			return
		}
		// Senders are untrusted: never echo internal failure detail.
		h.log.HTTPError(c.Request.Method, c.Request.URL.Path, http.StatusInternalServerError, err, c.ClientIP())
		httpkit.Error(c, http.StatusInternalServerError, errInternal, nil)
		return
	}

	httpkit.OK(c, result)
}

// candidateKey returns the key from the query string or header. An absent or
// blank value is reported as no key.
func candidateKey(c *gin.Context) (string, bool) {
	if key := strings.TrimSpace(c.Query(KeyQueryParam)); key != "" {
		return key, true
	}
	if key := strings.TrimSpace(c.GetHeader(KeyHeader)); key != "" {
		return key, true
	}
	return "", false
}

// ---- Event history (JWT authenticated) ----

// HandleListEvents lists the tenant's webhook deliveries.
// GET /api/v1/admin/webhook/events?status=&source=&limit=
func (h *Handler) HandleListEvents(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}

	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	if status != "" && !validStatus(status) {
		httpkit.Error(c, http.StatusBadRequest, "invalid status", nil)
		return
	}

	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpkit.Error(c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		limit = min(parsed, maxEventLimit)
	}

	list, err := h.events.List(c.Request.Context(), ListEventsParams{
		TenantID: tenantID,
		Status:   status,
		Source:   strings.ToLower(strings.TrimSpace(c.Query("source"))),
		Limit:    limit,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	if list == nil {
		list = []Event{}
	}
	httpkit.OK(c, list)
}

// HandleGetEvent returns one webhook delivery including its raw payload.
// GET /api/v1/admin/webhook/events/:id
func (h *Handler) HandleGetEvent(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid event ID", nil)
		return
	}

	event, err := h.events.GetByID(c.Request.Context(), id, tenantID)
	if errors.Is(err, ErrEventNotFound) {
		err = apperr.NotFound("webhook event not found")
	}
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, event)
}
