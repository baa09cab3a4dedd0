package voicesync

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"leadsync_backend/internal/voiceplatform"
	"leadsync_backend/platform/apperr"

	"github.com/google/uuid"
)

// AgentInput carries the writable settings of an agent. Empty strings and nil
// pointers leave the current value (or the default, on create) in place.
type AgentInput struct {
	Name                    string
	Kind                    string
	VoiceID                 string
	Language                string
	LLMID                   string
	Temperature             string
	BackchannelEnabled      *bool
	InterruptionSensitivity string
	Responsiveness          string
	WebhookURL              string
}

// ProvisionInput describes a phone number to purchase on the platform.
// Agent ids are local ids.
type ProvisionInput struct {
	AreaCode        int
	Nickname        string
	InboundAgentID  *uuid.UUID
	OutboundAgentID *uuid.UUID
}

// ListAgents returns the tenant's local agents.
func (s *Service) ListAgents(ctx context.Context, tenantID uuid.UUID) ([]Agent, error) {
	agents, err := s.store.ListAgents(ctx, tenantID)
	if err != nil {
		return nil, storeFailure("list agents", err)
	}
	return agents, nil
}

// GetAgent returns one local agent.
func (s *Service) GetAgent(ctx context.Context, tenantID, id uuid.UUID) (Agent, error) {
	agent, err := s.store.GetAgent(ctx, id, tenantID)
	if errors.Is(err, ErrAgentNotFound) {
		return Agent{}, apperr.NotFound("voice agent not found")
	}
	if err != nil {
		return Agent{}, storeFailure("get agent", err)
	}
	return agent, nil
}

// CreateAgent creates an agent. Voice agents are created on the platform
// first and mirrored locally from its response; text agents are local only.
func (s *Service) CreateAgent(ctx context.Context, tenantID uuid.UUID, in AgentInput) (Agent, error) {
	kind := strings.ToLower(strings.TrimSpace(in.Kind))
	if kind == "" {
		kind = AgentKindVoice
	}
	if kind != AgentKindVoice && kind != AgentKindText {
		return Agent{}, apperr.Validation("agent kind must be voice or text")
	}
	if strings.TrimSpace(in.Name) == "" {
		return Agent{}, apperr.Validation("agent name is required")
	}

	agent := Agent{
		TenantID:                tenantID,
		Kind:                    kind,
		Language:                DefaultLanguage,
		VoiceID:                 DefaultVoiceID,
		Temperature:             DefaultTemperature,
		BackchannelEnabled:      DefaultBackchannelEnabled,
		InterruptionSensitivity: DefaultInterruptionSensitivity,
		Responsiveness:          DefaultResponsiveness,
	}
	mergeAgentInput(&agent, in)

	if kind == AgentKindVoice {
		if err := s.requireRemote(); err != nil {
			return Agent{}, err
		}
		remote, err := s.remote.CreateAgent(ctx, remoteAgentConfig(agent))
		if err != nil {
			return Agent{}, remoteFailure("create agent", err)
		}
		applyRemoteAgent(&agent, remote)
		now := s.now().UTC()
		agent.LastSyncedAt = &now
	}

	created, err := s.store.InsertAgent(ctx, agent)
	if err != nil {
		return Agent{}, storeFailure("insert agent", err)
	}
	return created, nil
}

// UpdateAgent changes an agent's settings, pushing them to the platform
// first when the agent has a remote counterpart.
func (s *Service) UpdateAgent(ctx context.Context, tenantID, id uuid.UUID, in AgentInput) (Agent, error) {
	agent, err := s.GetAgent(ctx, tenantID, id)
	if err != nil {
		return Agent{}, err
	}
	mergeAgentInput(&agent, in)

	if agent.RemoteAgentID != nil {
		if err := s.requireRemote(); err != nil {
			return Agent{}, err
		}
		remote, err := s.remote.UpdateAgent(ctx, *agent.RemoteAgentID, remoteAgentConfig(agent))
		if err != nil {
			return Agent{}, remoteFailure("update agent", err)
		}
		applyRemoteAgent(&agent, remote)
		now := s.now().UTC()
		agent.LastSyncedAt = &now
	}

	if err := s.store.UpdateAgentConfig(ctx, agent); err != nil {
		if errors.Is(err, ErrAgentNotFound) {
			return Agent{}, apperr.NotFound("voice agent not found")
		}
		return Agent{}, storeFailure("update agent", err)
	}
	return agent, nil
}

// DeleteAgent removes an agent locally and on the platform. An agent already
// gone remotely is still removed locally.
func (s *Service) DeleteAgent(ctx context.Context, tenantID, id uuid.UUID) error {
	agent, err := s.GetAgent(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if agent.RemoteAgentID != nil {
		if err := s.requireRemote(); err != nil {
			return err
		}
		if err := s.remote.DeleteAgent(ctx, *agent.RemoteAgentID); err != nil {
			apiErr, ok := voiceplatform.AsAPIError(err)
			if !ok || apiErr.StatusCode != http.StatusNotFound {
				return remoteFailure("delete agent", err)
			}
		}
	}

	if err := s.store.DeleteAgent(ctx, id, tenantID); err != nil {
		if errors.Is(err, ErrAgentNotFound) {
			return apperr.NotFound("voice agent not found")
		}
		return storeFailure("delete agent", err)
	}
	return nil
}

// ListPhoneNumbers returns the tenant's local phone numbers.
func (s *Service) ListPhoneNumbers(ctx context.Context, tenantID uuid.UUID) ([]PhoneNumber, error) {
	numbers, err := s.store.ListPhoneNumbers(ctx, tenantID)
	if err != nil {
		return nil, storeFailure("list phone numbers", err)
	}
	return numbers, nil
}

// ProvisionPhoneNumber buys a number on the platform and mirrors it locally.
func (s *Service) ProvisionPhoneNumber(ctx context.Context, tenantID uuid.UUID, in ProvisionInput) (PhoneNumber, error) {
	if err := s.requireRemote(); err != nil {
		return PhoneNumber{}, err
	}

	params := voiceplatform.CreatePhoneNumberParams{
		AreaCode: in.AreaCode,
		Nickname: strings.TrimSpace(in.Nickname),
	}
	var err error
	if params.InboundAgentID, err = s.remoteAgentID(ctx, tenantID, in.InboundAgentID); err != nil {
		return PhoneNumber{}, err
	}
	if params.OutboundAgentID, err = s.remoteAgentID(ctx, tenantID, in.OutboundAgentID); err != nil {
		return PhoneNumber{}, err
	}

	remote, err := s.remote.CreatePhoneNumber(ctx, params)
	if err != nil {
		return PhoneNumber{}, remoteFailure("create phone number", err)
	}

	agentIDs, err := s.store.AgentIDsByRemoteID(ctx, tenantID)
	if err != nil {
		return PhoneNumber{}, storeFailure("load agent ids", err)
	}
	if _, err := s.upsertPhoneNumber(ctx, tenantID, remote, agentIDs, s.now().UTC()); err != nil {
		return PhoneNumber{}, err
	}
	number, err := s.store.FindPhoneNumberByRemoteID(ctx, tenantID, remote.RemoteID())
	if err != nil {
		return PhoneNumber{}, storeFailure("find phone number", err)
	}
	return number, nil
}

func (s *Service) remoteAgentID(ctx context.Context, tenantID uuid.UUID, id *uuid.UUID) (string, error) {
	if id == nil {
		return "", nil
	}
	agent, err := s.GetAgent(ctx, tenantID, *id)
	if err != nil {
		return "", err
	}
	if agent.RemoteAgentID == nil {
		return "", apperr.Validation("agent has no remote counterpart")
	}
	return *agent.RemoteAgentID, nil
}

func mergeAgentInput(agent *Agent, in AgentInput) {
	if v := strings.TrimSpace(in.Name); v != "" {
		agent.Name = v
	}
	if v := strings.TrimSpace(in.VoiceID); v != "" {
		agent.VoiceID = v
	}
	if v := strings.TrimSpace(in.Language); v != "" {
		agent.Language = v
	}
	if v := strings.TrimSpace(in.LLMID); v != "" {
		agent.RemoteLLMID = &v
	}
	if parseNumber(in.Temperature) != nil {
		agent.Temperature = strings.TrimSpace(in.Temperature)
	}
	if in.BackchannelEnabled != nil {
		agent.BackchannelEnabled = *in.BackchannelEnabled
	}
	if parseNumber(in.InterruptionSensitivity) != nil {
		agent.InterruptionSensitivity = strings.TrimSpace(in.InterruptionSensitivity)
	}
	if parseNumber(in.Responsiveness) != nil {
		agent.Responsiveness = strings.TrimSpace(in.Responsiveness)
	}
	if v := strings.TrimSpace(in.WebhookURL); v != "" {
		agent.WebhookURL = &v
	}
}

func remoteAgentConfig(agent Agent) voiceplatform.AgentConfig {
	backchannel := agent.BackchannelEnabled
	cfg := voiceplatform.AgentConfig{
		AgentName:               agent.Name,
		VoiceID:                 agent.VoiceID,
		Language:                agent.Language,
		VoiceTemperature:        parseNumber(agent.Temperature),
		EnableBackchannel:       &backchannel,
		InterruptionSensitivity: parseNumber(agent.InterruptionSensitivity),
		Responsiveness:          parseNumber(agent.Responsiveness),
	}
	if agent.RemoteLLMID != nil {
		cfg.ResponseEngine = &voiceplatform.ResponseEngine{Type: "retell-llm", LLMID: *agent.RemoteLLMID}
	}
	if agent.WebhookURL != nil {
		cfg.WebhookURL = *agent.WebhookURL
	}
	return cfg
}
