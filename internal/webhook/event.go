// Package webhook ingests lead notifications from third-party platforms.
// Every authenticated delivery is recorded in the event log before it is
// normalized into a contact, so failed deliveries stay inspectable.
package webhook

import (
	"time"

	"github.com/google/uuid"
)

// Event statuses. An event is created received and moves exactly once to
// processed or error.
const (
	StatusReceived  = "received"
	StatusProcessed = "processed"
	StatusError     = "error"
)

// Event is one inbound webhook delivery.
type Event struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenantId"`
	Source       string     `json:"source"`
	EventType    string     `json:"eventType"`
	RawPayload   string     `json:"rawPayload"`
	Status       string     `json:"status"`
	IsTest       bool       `json:"isTest"`
	ContactID    *uuid.UUID `json:"contactId,omitempty"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ProcessedAt  *time.Time `json:"processedAt,omitempty"`
}

// NewEvent describes an event to record in the received state.
type NewEvent struct {
	TenantID   uuid.UUID
	Source     string
	EventType  string
	RawPayload string
	IsTest     bool
}

// ListEventsParams filters the event history.
type ListEventsParams struct {
	TenantID uuid.UUID
	Status   string
	Source   string
	Limit    int
}

func validStatus(status string) bool {
	switch status {
	case StatusReceived, StatusProcessed, StatusError:
		return true
	}
	return false
}
