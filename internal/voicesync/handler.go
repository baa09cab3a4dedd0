package voicesync

import (
	"context"
	"net/http"
	"strconv"

	"leadsync_backend/platform/httpkit"
	"leadsync_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"
	errInvalidAgentID = "invalid agent ID"
)

// Enqueuer schedules a reconciliation run in the background and returns the
// job id.
type Enqueuer interface {
	EnqueueSync(ctx context.Context, tenantID uuid.UUID, kinds []Kind, params CallSyncParams) (string, error)
}

// Handler serves the reconciliation and agent management endpoints.
type Handler struct {
	service  *Service
	enqueuer Enqueuer
	val      *validator.Validator
}

// NewHandler creates a new voice handler. enqueuer may be nil, in which case
// async requests run inline.
func NewHandler(service *Service, enqueuer Enqueuer, val *validator.Validator) *Handler {
	return &Handler{service: service, enqueuer: enqueuer, val: val}
}

// SyncCallsRequest bounds a call pass.
type SyncCallsRequest struct {
	AgentID *uuid.UUID `json:"agentId"`
	Limit   int        `json:"limit" validate:"omitempty,min=1,max=1000"`
}

// AgentRequest creates or updates an agent.
type AgentRequest struct {
	Name                    string `json:"name" validate:"omitempty,max=200"`
	Kind                    string `json:"kind" validate:"omitempty,oneof=voice text"`
	VoiceID                 string `json:"voiceId" validate:"omitempty,max=200"`
	Language                string `json:"language" validate:"omitempty,max=20"`
	LLMID                   string `json:"llmId" validate:"omitempty,max=200"`
	Temperature             string `json:"temperature" validate:"omitempty,numeric"`
	BackchannelEnabled      *bool  `json:"backchannelEnabled"`
	InterruptionSensitivity string `json:"interruptionSensitivity" validate:"omitempty,numeric"`
	Responsiveness          string `json:"responsiveness" validate:"omitempty,numeric"`
	WebhookURL              string `json:"webhookUrl" validate:"omitempty,url"`
}

// ProvisionPhoneNumberRequest purchases a number on the platform.
type ProvisionPhoneNumberRequest struct {
	AreaCode        int        `json:"areaCode" validate:"omitempty,min=100,max=999"`
	Nickname        string     `json:"nickname" validate:"omitempty,max=100"`
	InboundAgentID  *uuid.UUID `json:"inboundAgentId"`
	OutboundAgentID *uuid.UUID `json:"outboundAgentId"`
}

// ImportCallResponse reports a single-call import.
type ImportCallResponse struct {
	Call    CallLog `json:"call"`
	Created bool    `json:"created"`
}

// HandleSyncAgents runs an agent pass.
// POST /api/v1/voice/sync/agents
func (h *Handler) HandleSyncAgents(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}
	result, err := h.service.SyncAgents(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// HandleSyncCalls runs a call pass.
// POST /api/v1/voice/sync/calls
func (h *Handler) HandleSyncCalls(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}
	params, ok := h.bindCallParams(c)
	if !ok {
		return
	}
	result, err := h.service.SyncCalls(c.Request.Context(), tenantID, params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// HandleImportCall stores one remote call by its platform id.
// POST /api/v1/voice/sync/calls/:callId
func (h *Handler) HandleImportCall(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}
	call, created, err := h.service.ImportCall(c.Request.Context(), tenantID, c.Param("callId"))
	if httpkit.HandleError(c, err) {
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, ImportCallResponse{Call: call, Created: created})
}

// HandleSyncPhoneNumbers runs a phone-number pass.
// POST /api/v1/voice/sync/phone-numbers
func (h *Handler) HandleSyncPhoneNumbers(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}
	result, err := h.service.SyncPhoneNumbers(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// HandleSyncAll runs every pass, or enqueues them when async=true and a
// queue is configured.
// POST /api/v1/voice/sync
func (h *Handler) HandleSyncAll(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}
	params, ok := h.bindCallParams(c)
	if !ok {
		return
	}

	async, _ := strconv.ParseBool(c.Query("async"))
	if async && h.enqueuer != nil {
		jobID, err := h.enqueuer.EnqueueSync(c.Request.Context(), tenantID, AllKinds, params)
		if httpkit.HandleError(c, err) {
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"jobId": jobID})
		return
	}

	report, err := h.service.SyncAll(c.Request.Context(), tenantID, params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

// HandleListAgents lists local agents.
// GET /api/v1/voice/agents
func (h *Handler) HandleListAgents(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}
	agents, err := h.service.ListAgents(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	if agents == nil {
		agents = []Agent{}
	}
	httpkit.OK(c, agents)
}

// HandleCreateAgent creates an agent.
// POST /api/v1/voice/agents
func (h *Handler) HandleCreateAgent(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}
	req, ok := h.bindAgentRequest(c)
	if !ok {
		return
	}
	agent, err := h.service.CreateAgent(c.Request.Context(), tenantID, req.toInput())
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, agent)
}

// HandleUpdateAgent updates an agent.
// PATCH /api/v1/voice/agents/:id
func (h *Handler) HandleUpdateAgent(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidAgentID, nil)
		return
	}
	req, ok := h.bindAgentRequest(c)
	if !ok {
		return
	}
	agent, err := h.service.UpdateAgent(c.Request.Context(), tenantID, id, req.toInput())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, agent)
}

// HandleDeleteAgent deletes an agent.
// DELETE /api/v1/voice/agents/:id
func (h *Handler) HandleDeleteAgent(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidAgentID, nil)
		return
	}
	if err := h.service.DeleteAgent(c.Request.Context(), tenantID, id); httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "voice agent deleted"})
}

// HandleListPhoneNumbers lists local phone numbers.
// GET /api/v1/voice/phone-numbers
func (h *Handler) HandleListPhoneNumbers(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}
	numbers, err := h.service.ListPhoneNumbers(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	if numbers == nil {
		numbers = []PhoneNumber{}
	}
	httpkit.OK(c, numbers)
}

// HandleProvisionPhoneNumber buys a number on the platform.
// POST /api/v1/voice/phone-numbers
func (h *Handler) HandleProvisionPhoneNumber(c *gin.Context) {
	tenantID, ok := httpkit.RequireTenant(c)
	if !ok {
		return
	}
	var req ProvisionPhoneNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, validator.Details(err))
		return
	}
	number, err := h.service.ProvisionPhoneNumber(c.Request.Context(), tenantID, ProvisionInput{
		AreaCode:        req.AreaCode,
		Nickname:        req.Nickname,
		InboundAgentID:  req.InboundAgentID,
		OutboundAgentID: req.OutboundAgentID,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, number)
}

// bindCallParams accepts an empty body as "no filter".
func (h *Handler) bindCallParams(c *gin.Context) (CallSyncParams, bool) {
	var req SyncCallsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
			return CallSyncParams{}, false
		}
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, validator.Details(err))
		return CallSyncParams{}, false
	}
	return CallSyncParams{AgentID: req.AgentID, Limit: req.Limit}, true
}

func (h *Handler) bindAgentRequest(c *gin.Context) (AgentRequest, bool) {
	var req AgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return req, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, validator.Details(err))
		return req, false
	}
	return req, true
}

func (r AgentRequest) toInput() AgentInput {
	return AgentInput{
		Name:                    r.Name,
		Kind:                    r.Kind,
		VoiceID:                 r.VoiceID,
		Language:                r.Language,
		LLMID:                   r.LLMID,
		Temperature:             r.Temperature,
		BackchannelEnabled:      r.BackchannelEnabled,
		InterruptionSensitivity: r.InterruptionSensitivity,
		Responsiveness:          r.Responsiveness,
		WebhookURL:              r.WebhookURL,
	}
}
