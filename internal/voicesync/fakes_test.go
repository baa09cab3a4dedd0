package voicesync

import (
	"context"
	"errors"
	"sync"
	"time"

	"leadsync_backend/internal/voiceplatform"

	"github.com/google/uuid"
)

// memoryStore is an in-memory Store used by the service and handler tests.
type memoryStore struct {
	mu           sync.Mutex
	agents       []Agent
	calls        []CallLog
	phoneNumbers []PhoneNumber
	insertErr    error
}

func (m *memoryStore) FindAgentByRemoteID(_ context.Context, tenantID uuid.UUID, remoteAgentID string) (Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		if a.TenantID == tenantID && a.RemoteAgentID != nil && *a.RemoteAgentID == remoteAgentID {
			return a, nil
		}
	}
	return Agent{}, ErrAgentNotFound
}

func (m *memoryStore) GetAgent(_ context.Context, id uuid.UUID, tenantID uuid.UUID) (Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		if a.ID == id && a.TenantID == tenantID {
			return a, nil
		}
	}
	return Agent{}, ErrAgentNotFound
}

func (m *memoryStore) ListAgents(_ context.Context, tenantID uuid.UUID) ([]Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Agent
	for _, a := range m.agents {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryStore) InsertAgent(_ context.Context, a Agent) (Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.agents = append(m.agents, a)
	return a, nil
}

func (m *memoryStore) UpdateAgentConfig(_ context.Context, a Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.agents {
		if m.agents[i].ID == a.ID && m.agents[i].TenantID == a.TenantID {
			stats := m.agents[i]
			a.TotalCalls, a.AvgDurationSeconds, a.SatisfactionScore = stats.TotalCalls, stats.AvgDurationSeconds, stats.SatisfactionScore
			m.agents[i] = a
			return nil
		}
	}
	return ErrAgentNotFound
}

func (m *memoryStore) DeleteAgent(_ context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.agents {
		if m.agents[i].ID == id && m.agents[i].TenantID == tenantID {
			m.agents = append(m.agents[:i], m.agents[i+1:]...)
			return nil
		}
	}
	return ErrAgentNotFound
}

func (m *memoryStore) AgentIDsByRemoteID(_ context.Context, tenantID uuid.UUID) (map[string]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uuid.UUID)
	for _, a := range m.agents {
		if a.TenantID == tenantID && a.RemoteAgentID != nil {
			out[*a.RemoteAgentID] = a.ID
		}
	}
	return out, nil
}

func (m *memoryStore) UpdateAgentStats(_ context.Context, id uuid.UUID, stats AgentStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.agents {
		if m.agents[i].ID == id {
			m.agents[i].TotalCalls = stats.TotalCalls
			m.agents[i].AvgDurationSeconds = stats.AvgDurationSeconds
			m.agents[i].SatisfactionScore = stats.SatisfactionScore
			return nil
		}
	}
	return ErrAgentNotFound
}

func (m *memoryStore) KnownCallIDs(_ context.Context, tenantID uuid.UUID, ids []string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	known := make(map[string]struct{})
	for _, c := range m.calls {
		if c.TenantID == tenantID && want[c.RemoteCallID] {
			known[c.RemoteCallID] = struct{}{}
		}
	}
	return known, nil
}

func (m *memoryStore) InsertCallLog(_ context.Context, c CallLog) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return false, m.insertErr
	}
	for _, existing := range m.calls {
		if existing.TenantID == c.TenantID && existing.RemoteCallID == c.RemoteCallID {
			return false, nil
		}
	}
	c.ID = uuid.New()
	m.calls = append(m.calls, c)
	return true, nil
}

func (m *memoryStore) CallStatsByAgent(_ context.Context, tenantID uuid.UUID) ([]AgentCallStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byAgent := make(map[uuid.UUID]*AgentCallStats)
	var order []uuid.UUID
	for _, c := range m.calls {
		if c.TenantID != tenantID || c.AgentID == nil {
			continue
		}
		s, ok := byAgent[*c.AgentID]
		if !ok {
			s = &AgentCallStats{AgentID: *c.AgentID}
			byAgent[*c.AgentID] = s
			order = append(order, *c.AgentID)
		}
		s.Calls++
		s.TotalDuration += c.DurationSeconds
		if c.Sentiment != nil {
			s.CallsWithSentiment++
			if *c.Sentiment == SentimentPositive {
				s.PositiveCalls++
			}
		}
	}
	out := make([]AgentCallStats, 0, len(order))
	for _, id := range order {
		out = append(out, *byAgent[id])
	}
	return out, nil
}

func (m *memoryStore) FindPhoneNumberByRemoteID(_ context.Context, tenantID uuid.UUID, remoteID string) (PhoneNumber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.phoneNumbers {
		if p.TenantID == tenantID && p.RemotePhoneNumberID == remoteID {
			return p, nil
		}
	}
	return PhoneNumber{}, ErrPhoneNumberNotFound
}

func (m *memoryStore) InsertPhoneNumber(_ context.Context, p PhoneNumber) (PhoneNumber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.phoneNumbers = append(m.phoneNumbers, p)
	return p, nil
}

func (m *memoryStore) UpdatePhoneNumber(_ context.Context, p PhoneNumber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.phoneNumbers {
		if m.phoneNumbers[i].ID == p.ID {
			m.phoneNumbers[i] = p
			return nil
		}
	}
	return ErrPhoneNumberNotFound
}

func (m *memoryStore) ListPhoneNumbers(_ context.Context, tenantID uuid.UUID) ([]PhoneNumber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PhoneNumber
	for _, p := range m.phoneNumbers {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeRemote returns canned platform data and records writes.
type fakeRemote struct {
	mu           sync.Mutex
	agents       []voiceplatform.Agent
	calls        []voiceplatform.Call
	phoneNumbers []voiceplatform.PhoneNumber

	listAgentsErr  error
	listCallsErr   error
	listPhonesErr  error
	deleteAgentErr error

	lastListCalls voiceplatform.ListCallsParams
	created       []voiceplatform.AgentConfig
	updated       map[string]voiceplatform.AgentConfig
	deleted       []string
	provisioned   []voiceplatform.CreatePhoneNumberParams
}

func (f *fakeRemote) ListAgents(context.Context) ([]voiceplatform.Agent, error) {
	return f.agents, f.listAgentsErr
}

func (f *fakeRemote) CreateAgent(_ context.Context, cfg voiceplatform.AgentConfig) (voiceplatform.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, cfg)
	return agentFromConfig("agent_"+uuid.NewString()[:8], cfg), nil
}

func (f *fakeRemote) UpdateAgent(_ context.Context, agentID string, cfg voiceplatform.AgentConfig) (voiceplatform.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = make(map[string]voiceplatform.AgentConfig)
	}
	f.updated[agentID] = cfg
	return agentFromConfig(agentID, cfg), nil
}

func (f *fakeRemote) DeleteAgent(_ context.Context, agentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, agentID)
	return f.deleteAgentErr
}

func (f *fakeRemote) ListCalls(_ context.Context, p voiceplatform.ListCallsParams) ([]voiceplatform.Call, error) {
	f.mu.Lock()
	f.lastListCalls = p
	f.mu.Unlock()
	return f.calls, f.listCallsErr
}

func (f *fakeRemote) GetCall(_ context.Context, callID string) (voiceplatform.Call, error) {
	for _, c := range f.calls {
		if c.CallID == callID {
			return c, nil
		}
	}
	return voiceplatform.Call{}, &voiceplatform.APIError{Method: "GET", Path: "/v2/get-call/" + callID, StatusCode: 404, Body: "call not found"}
}

func (f *fakeRemote) ListPhoneNumbers(context.Context) ([]voiceplatform.PhoneNumber, error) {
	return f.phoneNumbers, f.listPhonesErr
}

func (f *fakeRemote) CreatePhoneNumber(_ context.Context, p voiceplatform.CreatePhoneNumberParams) (voiceplatform.PhoneNumber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.provisioned = append(f.provisioned, p)
	return voiceplatform.PhoneNumber{
		PhoneNumber:     "+14155552672",
		Nickname:        p.Nickname,
		AreaCode:        &p.AreaCode,
		InboundAgentID:  p.InboundAgentID,
		OutboundAgentID: p.OutboundAgentID,
	}, nil
}

func agentFromConfig(id string, cfg voiceplatform.AgentConfig) voiceplatform.Agent {
	return voiceplatform.Agent{
		AgentID:                 id,
		AgentName:               cfg.AgentName,
		VoiceID:                 cfg.VoiceID,
		Language:                cfg.Language,
		ResponseEngine:          cfg.ResponseEngine,
		VoiceTemperature:        cfg.VoiceTemperature,
		EnableBackchannel:       cfg.EnableBackchannel,
		InterruptionSensitivity: cfg.InterruptionSensitivity,
		Responsiveness:          cfg.Responsiveness,
		WebhookURL:              cfg.WebhookURL,
	}
}

var errStoreDown = errors.New("connection refused")

func int64Ptr(v int64) *int64 { return &v }
