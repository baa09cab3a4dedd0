package scheduler

import (
	"context"
	"fmt"

	"leadsync_backend/internal/voicesync"
	"leadsync_backend/platform/config"
	"leadsync_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Syncer runs reconciliation passes for one tenant.
type Syncer interface {
	Run(ctx context.Context, tenantID uuid.UUID, kinds []voicesync.Kind, params voicesync.CallSyncParams) (voicesync.Report, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	syncer Syncer
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, syncer Syncer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 4
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server: server,
		syncer: syncer,
		log:    log,
	}
	w.mux = w.newMux()
	return w, nil
}

func (w *Worker) newMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskVoiceSync, w.handleVoiceSync)
	return mux
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleVoiceSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseVoiceSyncPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	tenantID, kinds, params, err := payload.run()
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	report, err := w.syncer.Run(ctx, tenantID, kinds, params)
	if err != nil {
		w.log.Error("voice sync job failed", "tenantId", tenantID, "kinds", payload.Kinds, "error", err)
		return err
	}

	w.log.Info("voice sync job finished", "tenantId", tenantID, "kinds", payload.Kinds, "report", report)
	return nil
}
