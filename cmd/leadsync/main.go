package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"leadsync_backend/internal/cli"
	"leadsync_backend/internal/events"
	"leadsync_backend/internal/tenantsecret"
	"leadsync_backend/internal/voiceplatform"
	"leadsync_backend/internal/voicesync"
	"leadsync_backend/platform/config"
	"leadsync_backend/platform/db"
	"leadsync_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var version = "dev"

// backend wires the services the CLI drives directly, without HTTP.
type backend struct {
	pool    *pgxpool.Pool
	bus     *events.InMemoryBus
	sync    *voicesync.Service
	secrets *tenantsecret.Service
}

func (b *backend) Migrate(ctx context.Context) error {
	return db.RunMigrations(ctx, b.pool)
}

func (b *backend) Sync(ctx context.Context, tenantID uuid.UUID, kinds []voicesync.Kind, params voicesync.CallSyncParams) (voicesync.Report, error) {
	return b.sync.Run(ctx, tenantID, kinds, params)
}

func (b *backend) CreateSecret(ctx context.Context, in tenantsecret.CreateInput) (tenantsecret.Created, error) {
	return b.secrets.Create(ctx, in)
}

func (b *backend) Close() {
	b.bus.Wait()
	b.pool.Close()
}

func connect(ctx context.Context) (cli.Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Env)

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var remote voicesync.Remote
	if cfg.IsVoicePlatformEnabled() {
		remote = voiceplatform.NewClient(cfg, log)
	}

	bus := events.NewInMemoryBus(log)
	return &backend{
		pool:    pool,
		bus:     bus,
		sync:    voicesync.NewService(remote, voicesync.NewRepository(pool), bus, cfg.GetPhoneDefaultRegion(), log),
		secrets: tenantsecret.NewService(tenantsecret.NewRepository(pool), log),
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(connect, version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
