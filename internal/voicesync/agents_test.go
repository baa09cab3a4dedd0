package voicesync

import (
	"context"
	"net/http"
	"testing"

	"leadsync_backend/internal/voiceplatform"
	"leadsync_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestCreateVoiceAgentMirrorsRemote(t *testing.T) {
	f := newSyncFixture()

	agent, err := f.service.CreateAgent(context.Background(), f.tenantID, AgentInput{Name: "Front desk", Temperature: "0.7"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if agent.RemoteAgentID == nil || agent.Kind != AgentKindVoice || agent.Temperature != "0.7" {
		t.Fatalf("unexpected agent %+v", agent)
	}
	if len(f.remote.created) != 1 || f.remote.created[0].AgentName != "Front desk" {
		t.Fatalf("expected remote create, got %+v", f.remote.created)
	}
	if cfg := f.remote.created[0]; cfg.EnableBackchannel == nil || !*cfg.EnableBackchannel {
		t.Fatalf("expected default backchannel pushed to remote, got %+v", cfg)
	}
}

func TestCreateTextAgentStaysLocal(t *testing.T) {
	f := newSyncFixture()

	agent, err := f.service.CreateAgent(context.Background(), f.tenantID, AgentInput{Name: "Chat", Kind: "text"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if agent.RemoteAgentID != nil || len(f.remote.created) != 0 {
		t.Fatalf("expected local-only text agent, got %+v", agent)
	}

	_, err = f.service.CreateAgent(context.Background(), f.tenantID, AgentInput{Kind: "text"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error without a name, got %v", err)
	}
}

func TestUpdateAgentPushesToRemote(t *testing.T) {
	f := newSyncFixture()
	agent, err := f.service.CreateAgent(context.Background(), f.tenantID, AgentInput{Name: "Front desk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.service.UpdateAgent(context.Background(), f.tenantID, agent.ID, AgentInput{Name: "Reception", Responsiveness: "0.5"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Reception" || updated.Responsiveness != "0.5" {
		t.Fatalf("unexpected agent %+v", updated)
	}
	if _, ok := f.remote.updated[*agent.RemoteAgentID]; !ok {
		t.Fatalf("expected remote update for %s", *agent.RemoteAgentID)
	}

	_, err = f.service.UpdateAgent(context.Background(), f.tenantID, uuid.New(), AgentInput{Name: "x"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteAgentToleratesRemoteNotFound(t *testing.T) {
	f := newSyncFixture()
	agent, err := f.service.CreateAgent(context.Background(), f.tenantID, AgentInput{Name: "Front desk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.remote.deleteAgentErr = &voiceplatform.APIError{StatusCode: http.StatusNotFound, Body: "not found"}

	if err := f.service.DeleteAgent(context.Background(), f.tenantID, agent.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.store.agents) != 0 {
		t.Fatalf("expected local agent removed")
	}
}

func TestDeleteAgentKeepsLocalRowOnRemoteFailure(t *testing.T) {
	f := newSyncFixture()
	agent, err := f.service.CreateAgent(context.Background(), f.tenantID, AgentInput{Name: "Front desk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.remote.deleteAgentErr = &voiceplatform.APIError{StatusCode: http.StatusInternalServerError, Body: "upstream"}

	err = f.service.DeleteAgent(context.Background(), f.tenantID, agent.ID)
	if !apperr.Is(err, apperr.KindBadGateway) {
		t.Fatalf("expected bad gateway, got %v", err)
	}
	if len(f.store.agents) != 1 {
		t.Fatalf("expected local agent kept")
	}
}

func TestProvisionPhoneNumberMapsAgents(t *testing.T) {
	f := newSyncFixture()
	agent, err := f.service.CreateAgent(context.Background(), f.tenantID, AgentInput{Name: "Front desk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	number, err := f.service.ProvisionPhoneNumber(context.Background(), f.tenantID, ProvisionInput{
		AreaCode:       415,
		Nickname:       "Main",
		InboundAgentID: &agent.ID,
	})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if got := f.remote.provisioned[0]; got.InboundAgentID != *agent.RemoteAgentID || got.AreaCode != 415 {
		t.Fatalf("unexpected remote params %+v", got)
	}
	if number.InboundAgentID == nil || *number.InboundAgentID != agent.ID || number.AreaCode != "415" {
		t.Fatalf("unexpected local number %+v", number)
	}

	text, _ := f.service.CreateAgent(context.Background(), f.tenantID, AgentInput{Name: "Chat", Kind: "text"})
	_, err = f.service.ProvisionPhoneNumber(context.Background(), f.tenantID, ProvisionInput{OutboundAgentID: &text.ID})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for text agent, got %v", err)
	}
}
