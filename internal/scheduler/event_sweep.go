package scheduler

import (
	"context"
	"time"

	"leadsync_backend/platform/logger"
)

const (
	defaultSweepInterval      = 5 * time.Minute
	defaultStaleReceivedAfter = 15 * time.Minute

	staleEventMessage = "outcome not recorded before timeout; a contact may have been created"
)

// EventStore is the part of the webhook event log the sweeper touches.
type EventStore interface {
	MarkStaleReceived(ctx context.Context, before time.Time, message string) (int64, error)
}

// StaleEventSweeper finalizes webhook events whose request died between the
// received insert and the outcome update. Rows are never deleted.
type StaleEventSweeper struct {
	store      EventStore
	log        *logger.Logger
	interval   time.Duration
	staleAfter time.Duration
	now        func() time.Time
}

// NewStaleEventSweeper builds a sweeper. Non-positive durations use defaults.
func NewStaleEventSweeper(store EventStore, log *logger.Logger, interval, staleAfter time.Duration) *StaleEventSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if staleAfter <= 0 {
		staleAfter = defaultStaleReceivedAfter
	}
	return &StaleEventSweeper{store: store, log: log, interval: interval, staleAfter: staleAfter, now: time.Now}
}

func (s *StaleEventSweeper) Run(ctx context.Context) {
	if s == nil || s.store == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *StaleEventSweeper) sweep(ctx context.Context) {
	stale, err := s.store.MarkStaleReceived(ctx, s.now().Add(-s.staleAfter), staleEventMessage)
	if err != nil {
		s.log.Warn("webhook event sweep failed", "error", err)
		return
	}
	if stale > 0 {
		s.log.Info("webhook event sweep finalized stale events", "count", stale)
	}
}
