package voicesync

import (
	"math"
	"strconv"
	"strings"
	"time"

	"leadsync_backend/internal/voiceplatform"
)

// Defaults applied when the remote platform omits a setting. The platform's
// own defaults have changed between API versions, so they are pinned here.
const (
	DefaultTemperature             = "1"
	DefaultBackchannelEnabled      = true
	DefaultInterruptionSensitivity = "1"
	DefaultResponsiveness          = "1"
	DefaultLanguage                = "en-US"
	DefaultVoiceID                 = ""
)

// NormalizeCallStatus maps any remote status onto the four local buckets.
func NormalizeCallStatus(remote string) string {
	switch strings.ToLower(strings.TrimSpace(remote)) {
	case "ended", "completed", "transferred":
		return CallStatusCompleted
	case "voicemail":
		return CallStatusVoicemail
	case "missed", "no-answer", "busy":
		return CallStatusMissed
	case "failed", "error":
		return CallStatusFailed
	default:
		return CallStatusCompleted
	}
}

// NormalizeSentiment returns positive, neutral or negative, or nil for
// anything unrecognized.
func NormalizeSentiment(remote string) *string {
	var s string
	switch strings.ToLower(strings.TrimSpace(remote)) {
	case SentimentPositive:
		s = SentimentPositive
	case SentimentNeutral:
		s = SentimentNeutral
	case SentimentNegative:
		s = SentimentNegative
	default:
		return nil
	}
	return &s
}

// CallDuration is the call length in whole seconds, or 0 when either
// timestamp is missing or the result is not a usable number.
func CallDuration(startMs, endMs *int64) int {
	if startMs == nil || endMs == nil {
		return 0
	}
	seconds := math.Round(float64(*endMs-*startMs) / 1000)
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0
	}
	return int(seconds)
}

// callLogFromRemote builds a call log. agentIDs maps remote agent ids to
// local ones; unmapped agents leave AgentID nil.
func callLogFromRemote(call voiceplatform.Call, agentIDs agentIDMap, now time.Time) CallLog {
	status := call.CallStatus
	if strings.TrimSpace(status) == "" {
		status = call.DisconnectionReason
	}
	caller := strings.TrimSpace(call.FromNumber)
	if caller == "" {
		caller = strings.TrimSpace(call.ToNumber)
	}
	createdAt := now
	if call.StartTimestamp != nil && *call.StartTimestamp > 0 {
		createdAt = time.UnixMilli(*call.StartTimestamp).UTC()
	}

	return CallLog{
		AgentID:         agentIDs.lookup(call.AgentID),
		RemoteCallID:    call.CallID,
		CallerNumber:    caller,
		DurationSeconds: CallDuration(call.StartTimestamp, call.EndTimestamp),
		Status:          NormalizeCallStatus(status),
		Transcript:      optional(call.Transcript),
		Sentiment:       NormalizeSentiment(call.Sentiment()),
		CreatedAt:       createdAt,
	}
}

// applyRemoteAgent copies the remote configuration onto a local agent.
func applyRemoteAgent(local *Agent, remote voiceplatform.Agent) {
	name := strings.TrimSpace(remote.AgentName)
	if name == "" {
		name = remote.AgentID
	}
	local.Name = name
	local.Kind = AgentKindVoice
	local.RemoteAgentID = optional(remote.AgentID)
	local.RemoteLLMID = optional(remote.LLMID())
	local.VoiceID = remote.VoiceID
	local.Language = orDefault(remote.Language, DefaultLanguage)
	local.Temperature = formatNumber(remote.VoiceTemperature, DefaultTemperature)
	local.BackchannelEnabled = DefaultBackchannelEnabled
	if remote.EnableBackchannel != nil {
		local.BackchannelEnabled = *remote.EnableBackchannel
	}
	local.InterruptionSensitivity = formatNumber(remote.InterruptionSensitivity, DefaultInterruptionSensitivity)
	local.Responsiveness = formatNumber(remote.Responsiveness, DefaultResponsiveness)
	local.WebhookURL = optional(remote.WebhookURL)
}

// ComputeStats derives the stored statistics from raw aggregates.
// Satisfaction is the share of positive calls among calls with a sentiment,
// as a percentage with one decimal.
func ComputeStats(raw AgentCallStats) AgentStats {
	stats := AgentStats{TotalCalls: raw.Calls}
	if raw.Calls > 0 {
		stats.AvgDurationSeconds = int(math.Round(float64(raw.TotalDuration) / float64(raw.Calls)))
	}
	if raw.CallsWithSentiment > 0 {
		score := math.Round(float64(raw.PositiveCalls)/float64(raw.CallsWithSentiment)*1000) / 10
		stats.SatisfactionScore = &score
	}
	return stats
}

func formatNumber(v *float64, fallback string) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fallback
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseNumber(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
