package voicesync

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"leadsync_backend/internal/events"
	"leadsync_backend/internal/voiceplatform"
	"leadsync_backend/platform/apperr"
	"leadsync_backend/platform/logger"
	"leadsync_backend/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Remote is the voice platform surface the engine uses.
type Remote interface {
	ListAgents(ctx context.Context) ([]voiceplatform.Agent, error)
	CreateAgent(ctx context.Context, cfg voiceplatform.AgentConfig) (voiceplatform.Agent, error)
	UpdateAgent(ctx context.Context, agentID string, cfg voiceplatform.AgentConfig) (voiceplatform.Agent, error)
	DeleteAgent(ctx context.Context, agentID string) error
	ListCalls(ctx context.Context, p voiceplatform.ListCallsParams) ([]voiceplatform.Call, error)
	GetCall(ctx context.Context, callID string) (voiceplatform.Call, error)
	ListPhoneNumbers(ctx context.Context) ([]voiceplatform.PhoneNumber, error)
	CreatePhoneNumber(ctx context.Context, p voiceplatform.CreatePhoneNumberParams) (voiceplatform.PhoneNumber, error)
}

// Store is the local persistence the engine uses.
type Store interface {
	FindAgentByRemoteID(ctx context.Context, tenantID uuid.UUID, remoteAgentID string) (Agent, error)
	GetAgent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (Agent, error)
	ListAgents(ctx context.Context, tenantID uuid.UUID) ([]Agent, error)
	InsertAgent(ctx context.Context, a Agent) (Agent, error)
	UpdateAgentConfig(ctx context.Context, a Agent) error
	DeleteAgent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
	AgentIDsByRemoteID(ctx context.Context, tenantID uuid.UUID) (map[string]uuid.UUID, error)
	UpdateAgentStats(ctx context.Context, id uuid.UUID, stats AgentStats) error

	KnownCallIDs(ctx context.Context, tenantID uuid.UUID, remoteCallIDs []string) (map[string]struct{}, error)
	InsertCallLog(ctx context.Context, c CallLog) (bool, error)
	CallStatsByAgent(ctx context.Context, tenantID uuid.UUID) ([]AgentCallStats, error)

	FindPhoneNumberByRemoteID(ctx context.Context, tenantID uuid.UUID, remoteID string) (PhoneNumber, error)
	InsertPhoneNumber(ctx context.Context, p PhoneNumber) (PhoneNumber, error)
	UpdatePhoneNumber(ctx context.Context, p PhoneNumber) error
	ListPhoneNumbers(ctx context.Context, tenantID uuid.UUID) ([]PhoneNumber, error)
}

// Service runs reconciliation passes and agent management against the
// remote platform. A nil remote means the platform is not configured.
type Service struct {
	remote      Remote
	store       Store
	eventBus    events.Bus
	log         *logger.Logger
	phoneRegion string
	now         func() time.Time
}

// NewService creates a new reconciliation service.
func NewService(remote Remote, store Store, eventBus events.Bus, phoneRegion string, log *logger.Logger) *Service {
	return &Service{
		remote:      remote,
		store:       store,
		eventBus:    eventBus,
		log:         log,
		phoneRegion: phoneRegion,
		now:         time.Now,
	}
}

// Run executes the requested passes. Agents always go first because the
// other passes map remote agent ids through the local agent table; calls and
// phone numbers then run concurrently. Work already committed by a pass is
// kept when a later pass fails.
func (s *Service) Run(ctx context.Context, tenantID uuid.UUID, kinds []Kind, params CallSyncParams) (Report, error) {
	var report Report
	want := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	if want[KindAgents] {
		res, err := s.SyncAgents(ctx, tenantID)
		if err != nil {
			return report, err
		}
		report.Agents = &res
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if want[KindCalls] {
		g.Go(func() error {
			res, err := s.SyncCalls(gctx, tenantID, params)
			if err != nil {
				return err
			}
			mu.Lock()
			report.Calls = &res
			mu.Unlock()
			return nil
		})
	}
	if want[KindPhoneNumbers] {
		g.Go(func() error {
			res, err := s.SyncPhoneNumbers(gctx, tenantID)
			if err != nil {
				return err
			}
			mu.Lock()
			report.PhoneNumbers = &res
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return report, err
}

// SyncAll runs every pass.
func (s *Service) SyncAll(ctx context.Context, tenantID uuid.UUID, params CallSyncParams) (Report, error) {
	return s.Run(ctx, tenantID, AllKinds, params)
}

// SyncAgents inserts unknown remote agents and refreshes known ones.
func (s *Service) SyncAgents(ctx context.Context, tenantID uuid.UUID) (result AgentSyncResult, err error) {
	defer func() { s.completed(ctx, tenantID, KindAgents, result.Created, result.Updated, result.Total, err) }()

	if err := s.requireRemote(); err != nil {
		return result, err
	}
	remoteAgents, err := s.remote.ListAgents(ctx)
	if err != nil {
		return result, remoteFailure("list agents", err)
	}
	result.Total = len(remoteAgents)

	now := s.now().UTC()
	for _, remote := range remoteAgents {
		if strings.TrimSpace(remote.AgentID) == "" {
			continue
		}
		local, err := s.store.FindAgentByRemoteID(ctx, tenantID, remote.AgentID)
		switch {
		case err == nil:
			applyRemoteAgent(&local, remote)
			local.LastSyncedAt = &now
			if err := s.store.UpdateAgentConfig(ctx, local); err != nil {
				return result, storeFailure("update agent", err)
			}
			result.Updated++
		case errors.Is(err, ErrAgentNotFound):
			agent := Agent{TenantID: tenantID, LastSyncedAt: &now}
			applyRemoteAgent(&agent, remote)
			if _, err := s.store.InsertAgent(ctx, agent); err != nil {
				return result, storeFailure("insert agent", err)
			}
			result.Created++
		default:
			return result, storeFailure("find agent", err)
		}
	}
	return result, nil
}

// SyncCalls inserts remote calls not yet stored locally. Stored calls are
// never modified.
func (s *Service) SyncCalls(ctx context.Context, tenantID uuid.UUID, params CallSyncParams) (result CallSyncResult, err error) {
	defer func() { s.completed(ctx, tenantID, KindCalls, result.Synced, 0, result.Total, err) }()

	if err := s.requireRemote(); err != nil {
		return result, err
	}
	listParams, err := s.callListParams(ctx, tenantID, params)
	if err != nil {
		return result, err
	}

	remoteCalls, err := s.remote.ListCalls(ctx, listParams)
	if err != nil {
		return result, remoteFailure("list calls", err)
	}
	result.Total = len(remoteCalls)

	ids := make([]string, 0, len(remoteCalls))
	for _, call := range remoteCalls {
		if call.CallID != "" {
			ids = append(ids, call.CallID)
		}
	}
	known, err := s.store.KnownCallIDs(ctx, tenantID, ids)
	if err != nil {
		return result, storeFailure("load known calls", err)
	}
	agentIDs, err := s.store.AgentIDsByRemoteID(ctx, tenantID)
	if err != nil {
		return result, storeFailure("load agent ids", err)
	}

	now := s.now().UTC()
	for _, call := range remoteCalls {
		if call.CallID == "" {
			continue
		}
		if _, ok := known[call.CallID]; ok {
			continue
		}
		log := callLogFromRemote(call, agentIDs, now)
		log.TenantID = tenantID
		inserted, err := s.store.InsertCallLog(ctx, log)
		if err != nil {
			return result, storeFailure("insert call log", err)
		}
		known[call.CallID] = struct{}{}
		if inserted {
			result.Synced++
		}
	}

	if err := s.RefreshAgentStats(ctx, tenantID); err != nil {
		return result, err
	}
	return result, nil
}

// ImportCall stores a single remote call if it is not already known.
// It reports whether a new row was created.
func (s *Service) ImportCall(ctx context.Context, tenantID uuid.UUID, remoteCallID string) (CallLog, bool, error) {
	if err := s.requireRemote(); err != nil {
		return CallLog{}, false, err
	}
	call, err := s.remote.GetCall(ctx, remoteCallID)
	if err != nil {
		return CallLog{}, false, remoteFailure("get call", err)
	}
	agentIDs, err := s.store.AgentIDsByRemoteID(ctx, tenantID)
	if err != nil {
		return CallLog{}, false, storeFailure("load agent ids", err)
	}

	log := callLogFromRemote(call, agentIDs, s.now().UTC())
	log.TenantID = tenantID
	inserted, err := s.store.InsertCallLog(ctx, log)
	if err != nil {
		return CallLog{}, false, storeFailure("insert call log", err)
	}
	if inserted {
		if err := s.RefreshAgentStats(ctx, tenantID); err != nil {
			return log, true, err
		}
	}
	return log, inserted, nil
}

// RefreshAgentStats recomputes per-agent statistics from local call logs.
func (s *Service) RefreshAgentStats(ctx context.Context, tenantID uuid.UUID) error {
	rows, err := s.store.CallStatsByAgent(ctx, tenantID)
	if err != nil {
		return storeFailure("aggregate call stats", err)
	}
	for _, raw := range rows {
		if err := s.store.UpdateAgentStats(ctx, raw.AgentID, ComputeStats(raw)); err != nil {
			return storeFailure("update agent stats", err)
		}
	}
	return nil
}

// SyncPhoneNumbers inserts or refreshes every remote number. Agent
// assignments are mapped through local agents; unknown agents become nil.
func (s *Service) SyncPhoneNumbers(ctx context.Context, tenantID uuid.UUID) (result PhoneNumberSyncResult, err error) {
	defer func() {
		s.completed(ctx, tenantID, KindPhoneNumbers, result.Created, result.Updated, result.Total, err)
	}()

	if err := s.requireRemote(); err != nil {
		return result, err
	}
	remoteNumbers, err := s.remote.ListPhoneNumbers(ctx)
	if err != nil {
		return result, remoteFailure("list phone numbers", err)
	}
	result.Total = len(remoteNumbers)

	agentIDs, err := s.store.AgentIDsByRemoteID(ctx, tenantID)
	if err != nil {
		return result, storeFailure("load agent ids", err)
	}

	now := s.now().UTC()
	for _, remote := range remoteNumbers {
		created, err := s.upsertPhoneNumber(ctx, tenantID, remote, agentIDs, now)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

func (s *Service) upsertPhoneNumber(ctx context.Context, tenantID uuid.UUID, remote voiceplatform.PhoneNumber, agentIDs agentIDMap, now time.Time) (bool, error) {
	remoteID := remote.RemoteID()
	local, err := s.store.FindPhoneNumberByRemoteID(ctx, tenantID, remoteID)
	created := errors.Is(err, ErrPhoneNumberNotFound)
	if err != nil && !created {
		return false, storeFailure("find phone number", err)
	}

	local.TenantID = tenantID
	local.RemotePhoneNumberID = remoteID
	local.PhoneNumber = remote.PhoneNumber
	local.Nickname = strings.TrimSpace(remote.Nickname)
	local.AreaCode = s.areaCode(remote)
	local.InboundAgentID = agentIDs.lookup(remote.InboundAgentID)
	local.OutboundAgentID = agentIDs.lookup(remote.OutboundAgentID)
	local.LastSyncedAt = now

	if created {
		if _, err := s.store.InsertPhoneNumber(ctx, local); err != nil {
			return false, storeFailure("insert phone number", err)
		}
		return true, nil
	}
	if err := s.store.UpdatePhoneNumber(ctx, local); err != nil {
		return false, storeFailure("update phone number", err)
	}
	return false, nil
}

func (s *Service) areaCode(remote voiceplatform.PhoneNumber) string {
	if remote.AreaCode != nil && *remote.AreaCode > 0 {
		return strconv.Itoa(*remote.AreaCode)
	}
	return phone.AreaCode(remote.PhoneNumber, s.phoneRegion)
}

func (s *Service) callListParams(ctx context.Context, tenantID uuid.UUID, params CallSyncParams) (voiceplatform.ListCallsParams, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultCallLimit
	}
	if limit > MaxCallLimit {
		limit = MaxCallLimit
	}
	out := voiceplatform.ListCallsParams{Limit: limit}
	if params.AgentID == nil {
		return out, nil
	}

	agent, err := s.store.GetAgent(ctx, *params.AgentID, tenantID)
	if errors.Is(err, ErrAgentNotFound) {
		return out, apperr.NotFound("voice agent not found")
	}
	if err != nil {
		return out, storeFailure("get agent", err)
	}
	if agent.RemoteAgentID == nil {
		return out, apperr.Validation("agent has no remote counterpart")
	}
	out.AgentID = *agent.RemoteAgentID
	return out, nil
}

func (s *Service) requireRemote() error {
	if s.remote == nil {
		return apperr.Unavailable("voice platform is not configured")
	}
	return nil
}

func (s *Service) completed(ctx context.Context, tenantID uuid.UUID, kind Kind, created, updated, total int, err error) {
	event := events.VoiceSyncCompleted{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  tenantID,
		Kind:      string(kind),
		Created:   created,
		Updated:   updated,
		Total:     total,
	}
	if err != nil {
		event.Err = err.Error()
		s.log.Error("voicesync: pass failed", "kind", kind, "tenantId", tenantID, "error", err)
	} else {
		s.log.WithContext(ctx).SyncPass(string(kind), tenantID.String(), created, updated, total)
	}
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, event)
	}
}

// remoteFailure surfaces the platform's own message to the operator.
func remoteFailure(op string, err error) error {
	if apiErr, ok := voiceplatform.AsAPIError(err); ok {
		return apperr.BadGateway(apiErr.Error(), err).WithOp(op)
	}
	return apperr.BadGateway("voice platform unreachable: "+err.Error(), err).WithOp(op)
}

func storeFailure(op string, err error) error {
	return apperr.Wrap(apperr.KindInternal, "failed to "+op, err).WithOp(op)
}
