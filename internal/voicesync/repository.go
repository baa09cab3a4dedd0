package voicesync

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAgentNotFound       = errors.New("voice agent not found")
	ErrPhoneNumberNotFound = errors.New("phone number not found")
)

// agentIDMap maps remote agent ids to local agent ids.
type agentIDMap map[string]uuid.UUID

func (m agentIDMap) lookup(remoteID string) *uuid.UUID {
	if remoteID == "" {
		return nil
	}
	if id, ok := m[remoteID]; ok {
		return &id
	}
	return nil
}

// Repository provides data access for agents, call logs and phone numbers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new voice repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ---- Agents ----

const agentColumns = `id, tenant_id, name, kind, remote_agent_id, remote_llm_id, voice_id, language,
	temperature, backchannel_enabled, interruption_sensitivity, responsiveness, webhook_url,
	total_calls, avg_duration_seconds, satisfaction_score, last_synced_at, created_at, updated_at`

func scanAgent(row pgx.Row) (Agent, error) {
	var a Agent
	err := row.Scan(
		&a.ID, &a.TenantID, &a.Name, &a.Kind, &a.RemoteAgentID, &a.RemoteLLMID, &a.VoiceID, &a.Language,
		&a.Temperature, &a.BackchannelEnabled, &a.InterruptionSensitivity, &a.Responsiveness, &a.WebhookURL,
		&a.TotalCalls, &a.AvgDurationSeconds, &a.SatisfactionScore, &a.LastSyncedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// FindAgentByRemoteID looks up the local mirror of a remote agent.
func (r *Repository) FindAgentByRemoteID(ctx context.Context, tenantID uuid.UUID, remoteAgentID string) (Agent, error) {
	a, err := scanAgent(r.pool.QueryRow(ctx, `
		SELECT `+agentColumns+` FROM voice_agents
		WHERE tenant_id = $1 AND remote_agent_id = $2
	`, tenantID, remoteAgentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrAgentNotFound
	}
	return a, err
}

// GetAgent returns one agent scoped to the tenant.
func (r *Repository) GetAgent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (Agent, error) {
	a, err := scanAgent(r.pool.QueryRow(ctx, `
		SELECT `+agentColumns+` FROM voice_agents
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrAgentNotFound
	}
	return a, err
}

// ListAgents returns the tenant's agents.
func (r *Repository) ListAgents(ctx context.Context, tenantID uuid.UUID) ([]Agent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+agentColumns+` FROM voice_agents
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// InsertAgent stores a new agent.
func (r *Repository) InsertAgent(ctx context.Context, a Agent) (Agent, error) {
	return scanAgent(r.pool.QueryRow(ctx, `
		INSERT INTO voice_agents (tenant_id, name, kind, remote_agent_id, remote_llm_id, voice_id, language,
			temperature, backchannel_enabled, interruption_sensitivity, responsiveness, webhook_url, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+agentColumns,
		a.TenantID, a.Name, a.Kind, a.RemoteAgentID, a.RemoteLLMID, a.VoiceID, a.Language,
		a.Temperature, a.BackchannelEnabled, a.InterruptionSensitivity, a.Responsiveness, a.WebhookURL, a.LastSyncedAt,
	))
}

// UpdateAgentConfig refreshes the mutable configuration of an agent.
func (r *Repository) UpdateAgentConfig(ctx context.Context, a Agent) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE voice_agents SET
			name = $3, remote_agent_id = $4, remote_llm_id = $5, voice_id = $6, language = $7,
			temperature = $8, backchannel_enabled = $9, interruption_sensitivity = $10,
			responsiveness = $11, webhook_url = $12, last_synced_at = COALESCE($13, last_synced_at),
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2
	`, a.ID, a.TenantID, a.Name, a.RemoteAgentID, a.RemoteLLMID, a.VoiceID, a.Language,
		a.Temperature, a.BackchannelEnabled, a.InterruptionSensitivity, a.Responsiveness, a.WebhookURL, a.LastSyncedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAgentNotFound
	}
	return nil
}

// DeleteAgent removes a local agent. Call logs and phone numbers keep their
// rows with the agent reference cleared.
func (r *Repository) DeleteAgent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM voice_agents WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAgentNotFound
	}
	return nil
}

// AgentIDsByRemoteID returns the remote-to-local agent id map for a tenant.
func (r *Repository) AgentIDsByRemoteID(ctx context.Context, tenantID uuid.UUID) (map[string]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT remote_agent_id, id FROM voice_agents
		WHERE tenant_id = $1 AND remote_agent_id IS NOT NULL
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]uuid.UUID)
	for rows.Next() {
		var remoteID string
		var id uuid.UUID
		if err := rows.Scan(&remoteID, &id); err != nil {
			return nil, err
		}
		out[remoteID] = id
	}
	return out, rows.Err()
}

// UpdateAgentStats stores recomputed statistics.
func (r *Repository) UpdateAgentStats(ctx context.Context, id uuid.UUID, stats AgentStats) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE voice_agents
		SET total_calls = $2, avg_duration_seconds = $3, satisfaction_score = $4, updated_at = now()
		WHERE id = $1
	`, id, stats.TotalCalls, stats.AvgDurationSeconds, stats.SatisfactionScore)
	return err
}

// ---- Call logs ----

// KnownCallIDs returns which of the given remote call ids are already stored.
func (r *Repository) KnownCallIDs(ctx context.Context, tenantID uuid.UUID, remoteCallIDs []string) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	if len(remoteCallIDs) == 0 {
		return known, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT remote_call_id FROM call_logs
		WHERE tenant_id = $1 AND remote_call_id = ANY($2)
	`, tenantID, remoteCallIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		known[id] = struct{}{}
	}
	return known, rows.Err()
}

// InsertCallLog stores a call unless one with the same remote id exists.
// It reports whether a row was inserted.
func (r *Repository) InsertCallLog(ctx context.Context, c CallLog) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO call_logs (tenant_id, agent_id, remote_call_id, caller_number, duration_seconds,
			status, transcript, sentiment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, remote_call_id) DO NOTHING
	`, c.TenantID, c.AgentID, c.RemoteCallID, c.CallerNumber, c.DurationSeconds,
		c.Status, c.Transcript, c.Sentiment, c.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CallStatsByAgent aggregates call logs per agent.
func (r *Repository) CallStatsByAgent(ctx context.Context, tenantID uuid.UUID) ([]AgentCallStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT agent_id,
		       count(*),
		       COALESCE(sum(duration_seconds), 0),
		       count(*) FILTER (WHERE sentiment = 'positive'),
		       count(sentiment)
		FROM call_logs
		WHERE tenant_id = $1 AND agent_id IS NOT NULL
		GROUP BY agent_id
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AgentCallStats
	for rows.Next() {
		var s AgentCallStats
		if err := rows.Scan(&s.AgentID, &s.Calls, &s.TotalDuration, &s.PositiveCalls, &s.CallsWithSentiment); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ---- Phone numbers ----

const phoneNumberColumns = `id, tenant_id, remote_phone_number_id, phone_number, nickname, area_code,
	inbound_agent_id, outbound_agent_id, last_synced_at, created_at`

func scanPhoneNumber(row pgx.Row) (PhoneNumber, error) {
	var p PhoneNumber
	err := row.Scan(
		&p.ID, &p.TenantID, &p.RemotePhoneNumberID, &p.PhoneNumber, &p.Nickname, &p.AreaCode,
		&p.InboundAgentID, &p.OutboundAgentID, &p.LastSyncedAt, &p.CreatedAt,
	)
	return p, err
}

// FindPhoneNumberByRemoteID looks up the local mirror of a remote number.
func (r *Repository) FindPhoneNumberByRemoteID(ctx context.Context, tenantID uuid.UUID, remoteID string) (PhoneNumber, error) {
	p, err := scanPhoneNumber(r.pool.QueryRow(ctx, `
		SELECT `+phoneNumberColumns+` FROM phone_numbers
		WHERE tenant_id = $1 AND remote_phone_number_id = $2
	`, tenantID, remoteID))
	if errors.Is(err, pgx.ErrNoRows) {
		return PhoneNumber{}, ErrPhoneNumberNotFound
	}
	return p, err
}

// InsertPhoneNumber stores a new number.
func (r *Repository) InsertPhoneNumber(ctx context.Context, p PhoneNumber) (PhoneNumber, error) {
	return scanPhoneNumber(r.pool.QueryRow(ctx, `
		INSERT INTO phone_numbers (tenant_id, remote_phone_number_id, phone_number, nickname, area_code,
			inbound_agent_id, outbound_agent_id, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+phoneNumberColumns,
		p.TenantID, p.RemotePhoneNumberID, p.PhoneNumber, p.Nickname, p.AreaCode,
		p.InboundAgentID, p.OutboundAgentID, p.LastSyncedAt,
	))
}

// UpdatePhoneNumber refreshes a number in place.
func (r *Repository) UpdatePhoneNumber(ctx context.Context, p PhoneNumber) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE phone_numbers SET
			phone_number = $3, nickname = $4, area_code = $5,
			inbound_agent_id = $6, outbound_agent_id = $7, last_synced_at = $8
		WHERE id = $1 AND tenant_id = $2
	`, p.ID, p.TenantID, p.PhoneNumber, p.Nickname, p.AreaCode, p.InboundAgentID, p.OutboundAgentID, p.LastSyncedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPhoneNumberNotFound
	}
	return nil
}

// ListPhoneNumbers returns the tenant's numbers.
func (r *Repository) ListPhoneNumbers(ctx context.Context, tenantID uuid.UUID) ([]PhoneNumber, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+phoneNumberColumns+` FROM phone_numbers
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PhoneNumber
	for rows.Next() {
		p, err := scanPhoneNumber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
