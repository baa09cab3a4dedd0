// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
package events

import (
	"time"

	"leadsync_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Webhook Domain Events
// =============================================================================

// LeadIngested is published once a webhook delivery reached a terminal state.
// ContactID is nil when the event ended in the error state.
type LeadIngested struct {
	BaseEvent
	WebhookEventID uuid.UUID     `json:"webhookEventId"`
	TenantID       uuid.UUID     `json:"tenantId"`
	Source         string        `json:"source"`
	Status         string        `json:"status"`
	ContactID      *uuid.UUID    `json:"contactId,omitempty"`
	IsTest         bool          `json:"isTest"`
	Duration       time.Duration `json:"duration"`
}

func (e LeadIngested) EventName() string { return "webhook.lead.ingested" }

// WebhookRejected is published when a webhook request fails authentication.
type WebhookRejected struct {
	BaseEvent
	Source string `json:"source"`
}

func (e WebhookRejected) EventName() string { return "webhook.rejected" }

// =============================================================================
// Voice Sync Domain Events
// =============================================================================

// VoiceSyncCompleted is published after a reconciliation pass for one entity kind.
type VoiceSyncCompleted struct {
	BaseEvent
	TenantID uuid.UUID `json:"tenantId"`
	Kind     string    `json:"kind"`
	Created  int       `json:"created"`
	Updated  int       `json:"updated"`
	Total    int       `json:"total"`
	Err      string    `json:"error,omitempty"`
}

func (e VoiceSyncCompleted) EventName() string { return "voice.sync.completed" }
