package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apphttp "leadsync_backend/internal/http"
	"leadsync_backend/platform/config"
	"leadsync_backend/platform/httpkit"
	"leadsync_backend/platform/logger"
	"leadsync_backend/platform/metrics"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

type stubHealth struct{ err error }

func (s stubHealth) Ping(context.Context) error { return s.err }

type stubModule struct{}

func (stubModule) Name() string { return "stub" }

func (stubModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/public", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	ctx.Protected.GET("/whoami", func(c *gin.Context) {
		identity := httpkit.MustGetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"tenant": identity.TenantID()})
	})
	ctx.Admin.GET("/secret", func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

func newTestEngine(health apphttp.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config: &config.Config{
			JWTAccessSecret: testSecret,
			CORSOrigins:     []string{"http://localhost:4200"},
			MetricsEnabled:  true,
		},
		Logger:  logger.New("test"),
		Health:  health,
		Metrics: metrics.New(),
		Modules: []apphttp.Module{stubModule{}},
	})
}

func signToken(t *testing.T, roles []string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       uuid.NewString(),
		"type":      "access",
		"roles":     roles,
		"tenant_id": uuid.NewString(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func get(engine *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	engine := newTestEngine(stubHealth{})
	if rec := get(engine, "/api/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rec.Code)
	}
	if rec := get(engine, "/api/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected ready 200, got %d", rec.Code)
	}

	down := newTestEngine(stubHealth{err: errors.New("connection refused")})
	if rec := get(down, "/api/ready", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected ready 503, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	engine := newTestEngine(stubHealth{})
	_ = get(engine, "/api/health", "")
	if rec := get(engine, "/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
}

func TestRouteGroups(t *testing.T) {
	engine := newTestEngine(stubHealth{})

	if rec := get(engine, "/api/v1/public", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected public 204, got %d", rec.Code)
	}
	if rec := get(engine, "/api/v1/whoami", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected protected 401 without token, got %d", rec.Code)
	}
	if rec := get(engine, "/api/v1/whoami", signToken(t, nil)); rec.Code != http.StatusOK {
		t.Fatalf("expected protected 200 with token, got %d", rec.Code)
	}
	if rec := get(engine, "/api/v1/admin/secret", signToken(t, []string{"user"})); rec.Code != http.StatusForbidden {
		t.Fatalf("expected admin 403 without role, got %d", rec.Code)
	}
	if rec := get(engine, "/api/v1/admin/secret", signToken(t, []string{"admin"})); rec.Code != http.StatusNoContent {
		t.Fatalf("expected admin 204 with role, got %d", rec.Code)
	}
}
