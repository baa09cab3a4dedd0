package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"leadsync_backend/internal/events"
	"leadsync_backend/internal/scheduler"
	"leadsync_backend/internal/voiceplatform"
	"leadsync_backend/internal/voicesync"
	"leadsync_backend/internal/webhook"
	"leadsync_backend/platform/config"
	"leadsync_backend/platform/db"
	"leadsync_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	// Events left in received by a crashed request are finalized regardless of Redis.
	sweeper := scheduler.NewStaleEventSweeper(
		webhook.NewEventRepository(pool),
		log,
		getDurationEnv("WEBHOOK_EVENT_SWEEP_INTERVAL", 5*time.Minute),
		getDurationEnv("WEBHOOK_EVENT_STALE_AFTER", 15*time.Minute),
	)
	go sweeper.Run(ctx)

	var remote voicesync.Remote
	if cfg.IsVoicePlatformEnabled() {
		remote = voiceplatform.NewClient(cfg, log)
	} else {
		log.Warn("VOICE_API_KEY not configured; queued voice syncs will fail")
	}
	syncService := voicesync.NewService(remote, voicesync.NewRepository(pool), eventBus, cfg.GetPhoneDefaultRegion(), log)

	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; only the webhook event sweep runs")
		<-ctx.Done()
		return
	}

	worker, err := scheduler.NewWorker(cfg, syncService, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
