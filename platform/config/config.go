// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	IsMetricsEnabled() bool
}

// WebhookConfig provides abuse bounds for the public webhook endpoints.
type WebhookConfig interface {
	GetWebhookRateLimitRPS() float64
	GetWebhookRateLimitBurst() int
	GetWebhookMaxBodyBytes() int64
}

// PhoneConfig provides the region used when a phone number has no country prefix.
type PhoneConfig interface {
	GetPhoneDefaultRegion() string
}

// VoicePlatformConfig provides settings for the remote voice-AI platform client.
type VoicePlatformConfig interface {
	GetVoiceAPIURL() string
	GetVoiceAPIKey() string
	GetVoiceAPITimeout() time.Duration
	GetVoiceAPIRPS() float64
	IsVoicePlatformEnabled() bool
}

// SchedulerConfig provides settings for the asynq-backed job queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	JWTAccessSecret       string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	MetricsEnabled        bool
	WebhookRateLimitRPS   float64
	WebhookRateLimitBurst int
	WebhookMaxBodyBytes   int64
	PhoneDefaultRegion    string
	VoiceAPIURL           string
	VoiceAPIKey           string
	VoiceAPITimeout       time.Duration
	VoiceAPIRPS           float64
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }
func (c *Config) IsMetricsEnabled() bool   { return c.MetricsEnabled }

// WebhookConfig implementation
func (c *Config) GetWebhookRateLimitRPS() float64 { return c.WebhookRateLimitRPS }
func (c *Config) GetWebhookRateLimitBurst() int   { return c.WebhookRateLimitBurst }
func (c *Config) GetWebhookMaxBodyBytes() int64   { return c.WebhookMaxBodyBytes }

// PhoneConfig implementation
func (c *Config) GetPhoneDefaultRegion() string { return c.PhoneDefaultRegion }

// VoicePlatformConfig implementation
func (c *Config) GetVoiceAPIURL() string            { return c.VoiceAPIURL }
func (c *Config) GetVoiceAPIKey() string            { return c.VoiceAPIKey }
func (c *Config) GetVoiceAPITimeout() time.Duration { return c.VoiceAPITimeout }
func (c *Config) GetVoiceAPIRPS() float64           { return c.VoiceAPIRPS }
func (c *Config) IsVoicePlatformEnabled() bool      { return c.VoiceAPIKey != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// Load reads configuration from environment variables.
// The JWT secret is only required by binaries that serve authenticated routes;
// use RequireJWT to enforce it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		MetricsEnabled:        strings.EqualFold(getEnv("METRICS_ENABLED", "true"), "true"),
		WebhookRateLimitRPS:   mustFloat(getEnv("WEBHOOK_RATE_LIMIT_RPS", "5")),
		WebhookRateLimitBurst: mustInt(getEnv("WEBHOOK_RATE_LIMIT_BURST", "20")),
		WebhookMaxBodyBytes:   mustInt64(getEnv("WEBHOOK_MAX_BODY_BYTES", "1048576")),
		PhoneDefaultRegion:    strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "US")),
		VoiceAPIURL:           strings.TrimRight(getEnv("VOICE_API_URL", "https://api.retellai.com"), "/"),
		VoiceAPIKey:           getEnv("VOICE_API_KEY", ""),
		VoiceAPITimeout:       mustDuration(getEnv("VOICE_API_TIMEOUT", "15s")),
		VoiceAPIRPS:           mustFloat(getEnv("VOICE_API_RPS", "10")),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "4")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.VoiceAPITimeout <= 0 {
		return nil, fmt.Errorf("VOICE_API_TIMEOUT must be a positive duration")
	}

	return cfg, nil
}

// RequireJWT returns an error when no JWT access secret is configured.
func (c *Config) RequireJWT() error {
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
