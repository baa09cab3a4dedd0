// Package telemetry connects domain events to the prometheus collectors.
package telemetry

import (
	"context"

	"leadsync_backend/internal/events"
	"leadsync_backend/internal/webhook/normalizer"
	"leadsync_backend/platform/metrics"
)

// otherSourceLabel groups every source without a dedicated strategy so the
// label set stays fixed no matter what path callers post to.
const otherSourceLabel = "other"

func sourceLabel(source string) string {
	if key := normalizer.KnownSourceKey(source); key != "" {
		return key
	}
	return otherSourceLabel
}

// Subscriber counts webhook and reconciliation outcomes from the event bus.
type Subscriber struct {
	m *metrics.Metrics
}

// New creates a subscriber for the given collectors.
func New(m *metrics.Metrics) *Subscriber {
	return &Subscriber{m: m}
}

// RegisterHandlers subscribes to the events this package counts.
func (s *Subscriber) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadIngested{}.EventName(), events.HandlerFunc(s.onLeadIngested))
	bus.Subscribe(events.WebhookRejected{}.EventName(), events.HandlerFunc(s.onWebhookRejected))
	bus.Subscribe(events.VoiceSyncCompleted{}.EventName(), events.HandlerFunc(s.onVoiceSyncCompleted))
}

func (s *Subscriber) onLeadIngested(_ context.Context, event events.Event) error {
	e, ok := event.(events.LeadIngested)
	if !ok {
		return nil
	}
	source := sourceLabel(e.Source)
	s.m.WebhookReceived.WithLabelValues(source, e.Status).Inc()
	s.m.WebhookDuration.WithLabelValues(source).Observe(e.Duration.Seconds())
	return nil
}

func (s *Subscriber) onWebhookRejected(_ context.Context, event events.Event) error {
	e, ok := event.(events.WebhookRejected)
	if !ok {
		return nil
	}
	s.m.WebhookRejected.WithLabelValues(sourceLabel(e.Source)).Inc()
	return nil
}

func (s *Subscriber) onVoiceSyncCompleted(_ context.Context, event events.Event) error {
	e, ok := event.(events.VoiceSyncCompleted)
	if !ok {
		return nil
	}
	if e.Err != "" {
		s.m.SyncFailures.WithLabelValues(e.Kind).Inc()
	}
	s.m.SyncEntities.WithLabelValues(e.Kind, "created").Add(float64(e.Created))
	s.m.SyncEntities.WithLabelValues(e.Kind, "updated").Add(float64(e.Updated))
	return nil
}
