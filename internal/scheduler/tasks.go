package scheduler

import (
	"encoding/json"
	"fmt"

	"leadsync_backend/internal/voicesync"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskVoiceSync = "voice.sync"

type VoiceSyncPayload struct {
	TenantID string   `json:"tenantId"`
	Kinds    []string `json:"kinds"`
	AgentID  *string  `json:"agentId,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

func NewVoiceSyncTask(payload VoiceSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVoiceSync, data), nil
}

func ParseVoiceSyncPayload(task *asynq.Task) (VoiceSyncPayload, error) {
	var payload VoiceSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return VoiceSyncPayload{}, err
	}
	return payload, nil
}

func newVoiceSyncPayload(tenantID uuid.UUID, kinds []voicesync.Kind, params voicesync.CallSyncParams) VoiceSyncPayload {
	payload := VoiceSyncPayload{
		TenantID: tenantID.String(),
		Kinds:    make([]string, len(kinds)),
		Limit:    params.Limit,
	}
	for i, k := range kinds {
		payload.Kinds[i] = string(k)
	}
	if params.AgentID != nil {
		id := params.AgentID.String()
		payload.AgentID = &id
	}
	return payload
}

// run converts the payload back into engine arguments. No kinds means all.
func (p VoiceSyncPayload) run() (uuid.UUID, []voicesync.Kind, voicesync.CallSyncParams, error) {
	var params voicesync.CallSyncParams

	tenantID, err := uuid.Parse(p.TenantID)
	if err != nil {
		return uuid.Nil, nil, params, fmt.Errorf("invalid tenant id: %w", err)
	}

	kinds := make([]voicesync.Kind, 0, len(p.Kinds))
	for _, raw := range p.Kinds {
		kind, ok := voicesync.ParseKind(raw)
		if !ok {
			return uuid.Nil, nil, params, fmt.Errorf("unknown sync kind %q", raw)
		}
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		kinds = voicesync.AllKinds
	}

	if p.AgentID != nil {
		agentID, err := uuid.Parse(*p.AgentID)
		if err != nil {
			return uuid.Nil, nil, params, fmt.Errorf("invalid agent id: %w", err)
		}
		params.AgentID = &agentID
	}
	params.Limit = p.Limit
	return tenantID, kinds, params, nil
}
