// Package voiceplatform is a thin client for the remote voice-AI platform that
// owns agents, calls and phone numbers. It does not retry; callers decide.
package voiceplatform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leadsync_backend/platform/config"
	"leadsync_backend/platform/logger"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 15 * time.Second
	maxErrorBodyLen = 4096
)

// Client calls the voice platform REST API with a bearer key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewClient creates a client from configuration. Requests are paced to the
// configured rate so a large sync does not trip the platform's own limits.
func NewClient(cfg config.VoicePlatformConfig, log *logger.Logger) *Client {
	timeout := cfg.GetVoiceAPITimeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := rate.Inf
	if rps := cfg.GetVoiceAPIRPS(); rps > 0 {
		limit = rate.Limit(rps)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.GetVoiceAPIURL(), "/"),
		apiKey:  cfg.GetVoiceAPIKey(),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

// ListAgents returns every agent of the account.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var out []Agent
	err := c.do(ctx, http.MethodGet, "/list-agents", nil, &out)
	return out, err
}

// GetAgent returns one agent.
func (c *Client) GetAgent(ctx context.Context, agentID string) (Agent, error) {
	var out Agent
	err := c.do(ctx, http.MethodGet, "/get-agent/"+url.PathEscape(agentID), nil, &out)
	return out, err
}

// CreateAgent creates an agent.
func (c *Client) CreateAgent(ctx context.Context, cfg AgentConfig) (Agent, error) {
	var out Agent
	err := c.do(ctx, http.MethodPost, "/create-agent", cfg, &out)
	return out, err
}

// UpdateAgent patches an agent's configuration.
func (c *Client) UpdateAgent(ctx context.Context, agentID string, cfg AgentConfig) (Agent, error) {
	var out Agent
	err := c.do(ctx, http.MethodPatch, "/update-agent/"+url.PathEscape(agentID), cfg, &out)
	return out, err
}

// DeleteAgent deletes an agent.
func (c *Client) DeleteAgent(ctx context.Context, agentID string) error {
	return c.do(ctx, http.MethodDelete, "/delete-agent/"+url.PathEscape(agentID), nil, nil)
}

// ListCalls returns calls newest first, optionally for one agent.
func (c *Client) ListCalls(ctx context.Context, p ListCallsParams) ([]Call, error) {
	req := listCallsRequest{SortOrder: "descending", Limit: p.Limit}
	if p.AgentID != "" {
		req.FilterCriteria = &callFilter{AgentID: []string{p.AgentID}}
	}
	var out []Call
	err := c.do(ctx, http.MethodPost, "/v2/list-calls", req, &out)
	return out, err
}

// GetCall returns one call.
func (c *Client) GetCall(ctx context.Context, callID string) (Call, error) {
	var out Call
	err := c.do(ctx, http.MethodGet, "/v2/get-call/"+url.PathEscape(callID), nil, &out)
	return out, err
}

// ListPhoneNumbers returns every number of the account.
func (c *Client) ListPhoneNumbers(ctx context.Context) ([]PhoneNumber, error) {
	var out []PhoneNumber
	err := c.do(ctx, http.MethodGet, "/list-phone-numbers", nil, &out)
	return out, err
}

// CreatePhoneNumber purchases a number.
func (c *Client) CreatePhoneNumber(ctx context.Context, p CreatePhoneNumberParams) (PhoneNumber, error) {
	var out PhoneNumber
	err := c.do(ctx, http.MethodPost, "/create-phone-number", p, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("voice platform rate limiter: %w", err)
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal voice platform request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return &APIError{Method: method, Path: path, Timeout: true, Err: err}
		}
		return fmt.Errorf("voice platform request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if c.log != nil {
		c.log.Debug("voice platform request", "method", method, "path", path, "status", resp.StatusCode, "latency_ms", time.Since(start).Milliseconds())
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(err) {
			return &APIError{Method: method, Path: path, Timeout: true, Err: err}
		}
		return fmt.Errorf("decode voice platform %s response: %w", path, err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
