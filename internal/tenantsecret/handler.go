package tenantsecret

import (
	"net/http"
	"time"

	"leadsync_backend/platform/httpkit"
	"leadsync_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"
)

// Handler serves the admin secret management endpoints.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates a new secret handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// CreateSecretRequest is the request body for creating a webhook secret.
type CreateSecretRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=100"`
	Source string `json:"source" validate:"omitempty,max=64"`
}

// SecretResponse is returned when listing or creating secrets.
type SecretResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Source       string    `json:"source"`
	SecretPrefix string    `json:"secretPrefix"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    string    `json:"createdAt"`
}

// CreateSecretResponse includes the plaintext secret (shown only once).
type CreateSecretResponse struct {
	SecretResponse
	Secret string `json:"secret"`
}

// HandleCreate creates a new webhook secret.
// POST /api/v1/admin/webhook/secrets
func (h *Handler) HandleCreate(c *gin.Context) {
	var req CreateSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, validator.Details(err))
		return
	}

	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}

	created, err := h.service.Create(c.Request.Context(), CreateInput{
		TenantID: tenantID,
		Name:     req.Name,
		Source:   req.Source,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, CreateSecretResponse{
		SecretResponse: toSecretResponse(created.Secret),
		Secret:         created.Plaintext,
	})
}

// HandleList lists the tenant's webhook secrets.
// GET /api/v1/admin/webhook/secrets
func (h *Handler) HandleList(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}

	secrets, err := h.service.List(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]SecretResponse, len(secrets))
	for i, s := range secrets {
		result[i] = toSecretResponse(s)
	}
	httpkit.OK(c, result)
}

// HandleDeactivate soft-deletes a webhook secret.
// DELETE /api/v1/admin/webhook/secrets/:id
func (h *Handler) HandleDeactivate(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid secret ID", nil)
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id, tenantID); httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "webhook secret deactivated"})
}

func toSecretResponse(s Secret) SecretResponse {
	return SecretResponse{
		ID:           s.ID,
		Name:         s.Name,
		Source:       s.Source,
		SecretPrefix: s.SecretPrefix,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt.UTC().Format(time.RFC3339),
	}
}
