package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadsync_backend/internal/contacts"
	"leadsync_backend/internal/events"
	apphttp "leadsync_backend/internal/http"
	"leadsync_backend/internal/http/router"
	"leadsync_backend/internal/scheduler"
	"leadsync_backend/internal/telemetry"
	"leadsync_backend/internal/tenantsecret"
	"leadsync_backend/internal/voiceplatform"
	"leadsync_backend/internal/voicesync"
	"leadsync_backend/internal/webhook"
	"leadsync_backend/platform/config"
	"leadsync_backend/platform/db"
	"leadsync_backend/platform/logger"
	"leadsync_backend/platform/metrics"
	"leadsync_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.RequireJWT(); err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	var appMetrics *metrics.Metrics
	if cfg.IsMetricsEnabled() {
		appMetrics = metrics.New()
		telemetry.New(appMetrics).RegisterHandlers(eventBus)
	}

	enqueuer, closeEnqueuer := initSyncEnqueuer(cfg, log)
	if closeEnqueuer != nil {
		defer closeEnqueuer()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	tenantSecretModule := tenantsecret.NewModule(pool, val, log)
	contactsModule := contacts.NewModule(pool)
	webhookModule := webhook.NewModule(pool, tenantSecretModule.Service(), contactsModule.Repository(), cfg.GetPhoneDefaultRegion(), eventBus, log)
	voiceModule := voicesync.NewModule(pool, newVoiceRemote(cfg, log), enqueuer, eventBus, cfg.GetPhoneDefaultRegion(), val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		Metrics:  appMetrics,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			tenantSecretModule,
			contactsModule,
			webhookModule,
			voiceModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// newVoiceRemote returns nil when no API key is configured so the sync
// endpoints answer with 503 instead of calling out.
func newVoiceRemote(cfg *config.Config, log *logger.Logger) voicesync.Remote {
	if !cfg.IsVoicePlatformEnabled() {
		log.Warn("VOICE_API_KEY not configured; voice platform sync disabled")
		return nil
	}
	return voiceplatform.NewClient(cfg, log)
}

func initSyncEnqueuer(cfg config.SchedulerConfig, log *logger.Logger) (voicesync.Enqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; background voice sync disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize sync queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
