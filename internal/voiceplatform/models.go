package voiceplatform

// Remote shapes of the voice-AI platform API. Numeric and boolean settings are
// pointers because the platform omits them when they hold its own defaults.

// ResponseEngine links an agent to the LLM that drives it.
type ResponseEngine struct {
	Type  string `json:"type"`
	LLMID string `json:"llm_id,omitempty"`
}

// Agent is a remote voice agent.
type Agent struct {
	AgentID                   string          `json:"agent_id"`
	AgentName                 string          `json:"agent_name"`
	VoiceID                   string          `json:"voice_id"`
	Language                  string          `json:"language,omitempty"`
	ResponseEngine            *ResponseEngine `json:"response_engine,omitempty"`
	LLMWebsocketURL           string          `json:"llm_websocket_url,omitempty"`
	VoiceTemperature          *float64        `json:"voice_temperature,omitempty"`
	EnableBackchannel         *bool           `json:"enable_backchannel,omitempty"`
	InterruptionSensitivity   *float64        `json:"interruption_sensitivity,omitempty"`
	Responsiveness            *float64        `json:"responsiveness,omitempty"`
	WebhookURL                string          `json:"webhook_url,omitempty"`
	LastModificationTimestamp int64           `json:"last_modification_timestamp,omitempty"`
}

// LLMID returns the id of the agent's LLM, if any.
func (a Agent) LLMID() string {
	if a.ResponseEngine == nil {
		return ""
	}
	return a.ResponseEngine.LLMID
}

// AgentConfig is the writable part of an agent.
type AgentConfig struct {
	AgentName               string          `json:"agent_name,omitempty"`
	VoiceID                 string          `json:"voice_id,omitempty"`
	Language                string          `json:"language,omitempty"`
	ResponseEngine          *ResponseEngine `json:"response_engine,omitempty"`
	VoiceTemperature        *float64        `json:"voice_temperature,omitempty"`
	EnableBackchannel       *bool           `json:"enable_backchannel,omitempty"`
	InterruptionSensitivity *float64        `json:"interruption_sensitivity,omitempty"`
	Responsiveness          *float64        `json:"responsiveness,omitempty"`
	WebhookURL              string          `json:"webhook_url,omitempty"`
}

// CallAnalysis is the platform's post-call analysis.
type CallAnalysis struct {
	CallSummary    string `json:"call_summary,omitempty"`
	UserSentiment  string `json:"user_sentiment,omitempty"`
	CallSuccessful *bool  `json:"call_successful,omitempty"`
}

// Call is a remote call record. Timestamps are unix milliseconds.
type Call struct {
	CallID              string        `json:"call_id"`
	AgentID             string        `json:"agent_id"`
	CallStatus          string        `json:"call_status"`
	Direction           string        `json:"direction,omitempty"`
	FromNumber          string        `json:"from_number,omitempty"`
	ToNumber            string        `json:"to_number,omitempty"`
	StartTimestamp      *int64        `json:"start_timestamp,omitempty"`
	EndTimestamp        *int64        `json:"end_timestamp,omitempty"`
	Transcript          string        `json:"transcript,omitempty"`
	DisconnectionReason string        `json:"disconnection_reason,omitempty"`
	CallAnalysis        *CallAnalysis `json:"call_analysis,omitempty"`
}

// Sentiment returns the analysed user sentiment, if any.
func (c Call) Sentiment() string {
	if c.CallAnalysis == nil {
		return ""
	}
	return c.CallAnalysis.UserSentiment
}

// ListCallsParams filters a call listing. Results are always newest first.
type ListCallsParams struct {
	AgentID string
	Limit   int
}

type listCallsRequest struct {
	FilterCriteria *callFilter `json:"filter_criteria,omitempty"`
	SortOrder      string      `json:"sort_order"`
	Limit          int         `json:"limit,omitempty"`
}

type callFilter struct {
	AgentID []string `json:"agent_id,omitempty"`
}

// PhoneNumber is a remote phone number.
type PhoneNumber struct {
	PhoneNumberID             string `json:"phone_number_id,omitempty"`
	PhoneNumber               string `json:"phone_number"`
	PhoneNumberPretty         string `json:"phone_number_pretty,omitempty"`
	Nickname                  string `json:"nickname,omitempty"`
	AreaCode                  *int   `json:"area_code,omitempty"`
	InboundAgentID            string `json:"inbound_agent_id,omitempty"`
	OutboundAgentID           string `json:"outbound_agent_id,omitempty"`
	LastModificationTimestamp int64  `json:"last_modification_timestamp,omitempty"`
}

// RemoteID is the identifier used to match the number across syncs. The
// platform keys numbers by the number itself when it has no separate id.
func (p PhoneNumber) RemoteID() string {
	if p.PhoneNumberID != "" {
		return p.PhoneNumberID
	}
	return p.PhoneNumber
}

// CreatePhoneNumberParams purchases a number.
type CreatePhoneNumberParams struct {
	AreaCode        int    `json:"area_code,omitempty"`
	Nickname        string `json:"nickname,omitempty"`
	InboundAgentID  string `json:"inbound_agent_id,omitempty"`
	OutboundAgentID string `json:"outbound_agent_id,omitempty"`
}
