package voicesync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leadsync_backend/internal/voiceplatform"
	"leadsync_backend/platform/httpkit"
	"leadsync_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubEnqueuer struct {
	tenantID uuid.UUID
	kinds    []Kind
	params   CallSyncParams
}

func (s *stubEnqueuer) EnqueueSync(_ context.Context, tenantID uuid.UUID, kinds []Kind, params CallSyncParams) (string, error) {
	s.tenantID, s.kinds, s.params = tenantID, kinds, params
	return "job-1", nil
}

func newVoiceRouter(f *syncFixture, enqueuer Enqueuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(f.service, enqueuer, validator.New())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		c.Set(httpkit.ContextTenantIDKey, f.tenantID)
		c.Next()
	})
	r.POST("/voice/sync", h.HandleSyncAll)
	r.POST("/voice/sync/agents", h.HandleSyncAgents)
	r.POST("/voice/sync/calls", h.HandleSyncCalls)
	r.POST("/voice/sync/calls/:callId", h.HandleImportCall)
	r.GET("/voice/agents", h.HandleListAgents)
	r.POST("/voice/agents", h.HandleCreateAgent)
	r.PATCH("/voice/agents/:id", h.HandleUpdateAgent)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleSyncCallsReportsCounts(t *testing.T) {
	f := newSyncFixture()
	f.store.calls = []CallLog{{ID: uuid.New(), TenantID: f.tenantID, RemoteCallID: "call_1"}}
	f.remote.calls = []voiceplatform.Call{{CallID: "call_1"}, {CallID: "call_2"}}
	r := newVoiceRouter(f, nil)

	rec := doJSON(r, http.MethodPost, "/voice/sync/calls", `{"limit": 50}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got CallSyncResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Synced != 1 || got.Total != 2 {
		t.Fatalf("unexpected result %+v", got)
	}
	if f.remote.lastListCalls.Limit != 50 {
		t.Fatalf("expected limit 50 forwarded, got %d", f.remote.lastListCalls.Limit)
	}
}

func TestHandleSyncCallsRejectsLimitAboveMax(t *testing.T) {
	f := newSyncFixture()
	r := newVoiceRouter(f, nil)

	rec := doJSON(r, http.MethodPost, "/voice/sync/calls", `{"limit": 5000}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleSyncAgentsSurfacesRemoteMessage(t *testing.T) {
	f := newSyncFixture()
	f.remote.listAgentsErr = &voiceplatform.APIError{Method: "GET", Path: "/list-agents", StatusCode: 401, Body: "invalid api key"}
	r := newVoiceRouter(f, nil)

	rec := doJSON(r, http.MethodPost, "/voice/sync/agents", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid api key") {
		t.Fatalf("expected remote message in body, got %s", rec.Body.String())
	}
}

func TestHandleSyncAllRunsInline(t *testing.T) {
	f := newSyncFixture()
	f.remote.agents = []voiceplatform.Agent{{AgentID: "agent_a", AgentName: "Front desk"}}
	r := newVoiceRouter(f, nil)

	rec := doJSON(r, http.MethodPost, "/voice/sync?async=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected inline run without a queue, got %d", rec.Code)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Agents == nil || report.Calls == nil || report.PhoneNumbers == nil {
		t.Fatalf("expected every pass in report, got %+v", report)
	}
}

func TestHandleSyncAllEnqueuesWhenAsync(t *testing.T) {
	f := newSyncFixture()
	enqueuer := &stubEnqueuer{}
	r := newVoiceRouter(f, enqueuer)

	rec := doJSON(r, http.MethodPost, "/voice/sync?async=true", `{"limit": 20}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if enqueuer.tenantID != f.tenantID || len(enqueuer.kinds) != len(AllKinds) || enqueuer.params.Limit != 20 {
		t.Fatalf("unexpected enqueue %+v", enqueuer)
	}
	if len(f.store.agents) != 0 {
		t.Fatalf("expected no inline work when enqueued")
	}
}

func TestHandleImportCallStatus(t *testing.T) {
	f := newSyncFixture()
	f.remote.calls = []voiceplatform.Call{{CallID: "call_9"}}
	r := newVoiceRouter(f, nil)

	if rec := doJSON(r, http.MethodPost, "/voice/sync/calls/call_9", ""); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec := doJSON(r, http.MethodPost, "/voice/sync/calls/call_9", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for repeated import, got %d", rec.Code)
	}
}

func TestHandleAgentLifecycle(t *testing.T) {
	f := newSyncFixture()
	r := newVoiceRouter(f, nil)

	rec := doJSON(r, http.MethodPost, "/voice/agents", `{"name":"Chat","kind":"text"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created Agent
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(r, http.MethodPatch, "/voice/agents/"+created.ID.String(), `{"language":"nl-NL"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(r, http.MethodGet, "/voice/agents", "")
	var agents []Agent
	if err := json.Unmarshal(rec.Body.Bytes(), &agents); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(agents) != 1 || agents[0].Language != "nl-NL" {
		t.Fatalf("unexpected agents %+v", agents)
	}

	if rec := doJSON(r, http.MethodPost, "/voice/agents", `{"name":"x","kind":"fax"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", rec.Code)
	}
	if rec := doJSON(r, http.MethodPatch, "/voice/agents/not-a-uuid", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}
