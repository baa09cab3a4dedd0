package telemetry

import (
	"context"
	"fmt"
	"testing"

	"leadsync_backend/internal/events"
	"leadsync_backend/platform/logger"
	"leadsync_backend/platform/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSubscriberCountsWebhookOutcomes(t *testing.T) {
	m := metrics.New()
	bus := events.NewInMemoryBus(logger.New("development"))
	New(m).RegisterHandlers(bus)

	ctx := context.Background()
	for _, status := range []string{"processed", "processed", "error"} {
		if err := bus.PublishSync(ctx, events.LeadIngested{
			BaseEvent:      events.NewBaseEvent(),
			WebhookEventID: uuid.New(),
			TenantID:       uuid.New(),
			Source:         "angi",
			Status:         status,
		}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	_ = bus.PublishSync(ctx, events.WebhookRejected{BaseEvent: events.NewBaseEvent(), Source: "angi"})

	if got := testutil.ToFloat64(m.WebhookReceived.WithLabelValues("angi", "processed")); got != 2 {
		t.Fatalf("expected 2 processed deliveries, got %v", got)
	}
	if got := testutil.ToFloat64(m.WebhookReceived.WithLabelValues("angi", "error")); got != 1 {
		t.Fatalf("expected 1 failed delivery, got %v", got)
	}
	if got := testutil.ToFloat64(m.WebhookRejected.WithLabelValues("angi")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
}

func TestSubscriberCountsSyncPasses(t *testing.T) {
	m := metrics.New()
	bus := events.NewInMemoryBus(logger.New("development"))
	New(m).RegisterHandlers(bus)

	_ = bus.PublishSync(context.Background(), events.VoiceSyncCompleted{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  uuid.New(),
		Kind:      "agents",
		Created:   3,
		Updated:   2,
		Total:     5,
	})
	_ = bus.PublishSync(context.Background(), events.VoiceSyncCompleted{
		BaseEvent: events.NewBaseEvent(),
		Kind:      "calls",
		Err:       "voice platform returned 500",
	})

	if got := testutil.ToFloat64(m.SyncEntities.WithLabelValues("agents", "created")); got != 3 {
		t.Fatalf("expected 3 created agents, got %v", got)
	}
	if got := testutil.ToFloat64(m.SyncFailures.WithLabelValues("calls")); got != 1 {
		t.Fatalf("expected 1 failed call pass, got %v", got)
	}
}

func TestSubscriberKeepsSourceLabelsBounded(t *testing.T) {
	m := metrics.New()
	bus := events.NewInMemoryBus(logger.New("development"))
	New(m).RegisterHandlers(bus)

	ctx := context.Background()
	for i := 0; i < 500; i++ {
		source := fmt.Sprintf("spam-%d", i)
		_ = bus.PublishSync(ctx, events.WebhookRejected{BaseEvent: events.NewBaseEvent(), Source: source})
		_ = bus.PublishSync(ctx, events.LeadIngested{BaseEvent: events.NewBaseEvent(), Source: source, Status: "processed"})
	}
	_ = bus.PublishSync(ctx, events.WebhookRejected{BaseEvent: events.NewBaseEvent(), Source: "Yelp"})

	if got := testutil.CollectAndCount(m.WebhookRejected); got != 2 {
		t.Fatalf("expected 2 rejected series, got %d", got)
	}
	if got := testutil.CollectAndCount(m.WebhookReceived); got != 1 {
		t.Fatalf("expected 1 received series, got %d", got)
	}
	if got := testutil.ToFloat64(m.WebhookRejected.WithLabelValues("other")); got != 500 {
		t.Fatalf("expected 500 rejections under other, got %v", got)
	}
	if got := testutil.ToFloat64(m.WebhookRejected.WithLabelValues("yelp")); got != 1 {
		t.Fatalf("expected 1 rejection under yelp, got %v", got)
	}
}
