// Package voicesync mirrors a tenant's voice agents, call logs and phone
// numbers from the remote voice platform into local storage. Each pass lists
// the remote collection, diffs it against local rows by remote id, and
// inserts or updates accordingly.
package voicesync

import (
	"time"

	"github.com/google/uuid"
)

// Agent kinds. Text agents exist only locally and have no remote id.
const (
	AgentKindVoice = "voice"
	AgentKindText  = "text"
)

// Call statuses and sentiments stored locally.
const (
	CallStatusCompleted = "completed"
	CallStatusVoicemail = "voicemail"
	CallStatusMissed    = "missed"
	CallStatusFailed    = "failed"

	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Agent is the local mirror of a remote voice agent.
type Agent struct {
	ID                      uuid.UUID  `json:"id"`
	TenantID                uuid.UUID  `json:"tenantId"`
	Name                    string     `json:"name"`
	Kind                    string     `json:"kind"`
	RemoteAgentID           *string    `json:"remoteAgentId,omitempty"`
	RemoteLLMID             *string    `json:"remoteLlmId,omitempty"`
	VoiceID                 string     `json:"voiceId"`
	Language                string     `json:"language"`
	Temperature             string     `json:"temperature"`
	BackchannelEnabled      bool       `json:"backchannelEnabled"`
	InterruptionSensitivity string     `json:"interruptionSensitivity"`
	Responsiveness          string     `json:"responsiveness"`
	WebhookURL              *string    `json:"webhookUrl,omitempty"`
	TotalCalls              int        `json:"totalCalls"`
	AvgDurationSeconds      int        `json:"avgDurationSeconds"`
	SatisfactionScore       *float64   `json:"satisfactionScore,omitempty"`
	LastSyncedAt            *time.Time `json:"lastSyncedAt,omitempty"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
}

// CallLog is an immutable record of one remote call.
type CallLog struct {
	ID              uuid.UUID  `json:"id"`
	TenantID        uuid.UUID  `json:"tenantId"`
	AgentID         *uuid.UUID `json:"agentId,omitempty"`
	RemoteCallID    string     `json:"remoteCallId"`
	CallerNumber    string     `json:"callerNumber"`
	DurationSeconds int        `json:"durationSeconds"`
	Status          string     `json:"status"`
	Transcript      *string    `json:"transcript,omitempty"`
	Sentiment       *string    `json:"sentiment,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// PhoneNumber is the local mirror of a remote phone number.
type PhoneNumber struct {
	ID                  uuid.UUID  `json:"id"`
	TenantID            uuid.UUID  `json:"tenantId"`
	RemotePhoneNumberID string     `json:"remotePhoneNumberId"`
	PhoneNumber         string     `json:"phoneNumber"`
	Nickname            string     `json:"nickname"`
	AreaCode            string     `json:"areaCode"`
	InboundAgentID      *uuid.UUID `json:"inboundAgentId,omitempty"`
	OutboundAgentID     *uuid.UUID `json:"outboundAgentId,omitempty"`
	LastSyncedAt        time.Time  `json:"lastSyncedAt"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// AgentCallStats are raw per-agent aggregates over local call logs.
type AgentCallStats struct {
	AgentID            uuid.UUID
	Calls              int
	TotalDuration      int
	PositiveCalls      int
	CallsWithSentiment int
}

// AgentStats are the derived statistics stored on an agent.
type AgentStats struct {
	TotalCalls         int
	AvgDurationSeconds int
	SatisfactionScore  *float64
}

// Kind names one reconciliation pass.
type Kind string

const (
	KindAgents       Kind = "agents"
	KindCalls        Kind = "calls"
	KindPhoneNumbers Kind = "phone-numbers"
)

// AllKinds is every pass in dependency order.
var AllKinds = []Kind{KindAgents, KindCalls, KindPhoneNumbers}

// ParseKind validates a pass name.
func ParseKind(value string) (Kind, bool) {
	switch Kind(value) {
	case KindAgents, KindCalls, KindPhoneNumbers:
		return Kind(value), true
	}
	return "", false
}

// AgentSyncResult counts an agent pass.
type AgentSyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// CallSyncResult counts a call pass. Synced is the number of newly inserted calls.
type CallSyncResult struct {
	Synced int `json:"synced"`
	Total  int `json:"total"`
}

// PhoneNumberSyncResult counts a phone-number pass.
type PhoneNumberSyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// Report collects the results of the passes that ran.
type Report struct {
	Agents       *AgentSyncResult       `json:"agents,omitempty"`
	Calls        *CallSyncResult        `json:"calls,omitempty"`
	PhoneNumbers *PhoneNumberSyncResult `json:"phoneNumbers,omitempty"`
}

// CallSyncParams bounds a call pass. AgentID is a local agent id.
type CallSyncParams struct {
	AgentID *uuid.UUID
	Limit   int
}

const (
	DefaultCallLimit = 100
	MaxCallLimit     = 1000
)
