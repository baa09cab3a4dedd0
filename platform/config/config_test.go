package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/leadsync")
	t.Setenv("CORS_ORIGINS", "http://localhost:4200")
	t.Setenv("CORS_ALLOW_ALL", "false")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VOICE_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if cfg.GetHTTPAddr() != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.GetHTTPAddr())
	}
	if cfg.GetWebhookRateLimitBurst() != 20 || cfg.GetWebhookMaxBodyBytes() != 1048576 {
		t.Fatalf("unexpected webhook bounds: %d %d", cfg.GetWebhookRateLimitBurst(), cfg.GetWebhookMaxBodyBytes())
	}
	if cfg.GetVoiceAPITimeout() != 15*time.Second {
		t.Fatalf("expected 15s voice timeout, got %s", cfg.GetVoiceAPITimeout())
	}
	if cfg.IsVoicePlatformEnabled() {
		t.Fatal("expected voice platform disabled without an API key")
	}
	if err := cfg.RequireJWT(); err == nil {
		t.Fatal("expected RequireJWT to fail without a secret")
	}
}

func TestLoadNormalizesValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PHONE_DEFAULT_REGION", "nl")
	t.Setenv("VOICE_API_URL", "https://voice.example.com/")
	t.Setenv("VOICE_API_KEY", "key_123")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if cfg.GetPhoneDefaultRegion() != "NL" {
		t.Fatalf("expected upper-cased region, got %q", cfg.GetPhoneDefaultRegion())
	}
	if cfg.GetVoiceAPIURL() != "https://voice.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.GetVoiceAPIURL())
	}
	if !cfg.IsVoicePlatformEnabled() {
		t.Fatal("expected voice platform enabled")
	}
	if got := cfg.GetCORSOrigins(); len(got) != 2 {
		t.Fatalf("expected 2 origins, got %v", got)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"missing database": {"DATABASE_URL": ""},
		"wildcard with credentials": {
			"CORS_ORIGINS":           "*",
			"CORS_ALLOW_CREDENTIALS": "true",
		},
		"bad voice timeout": {"VOICE_API_TIMEOUT": "soon"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			for key, value := range env {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected load to fail")
			}
		})
	}
}
