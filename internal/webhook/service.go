package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadsync_backend/internal/contacts"
	"leadsync_backend/internal/events"
	"leadsync_backend/internal/webhook/normalizer"
	"leadsync_backend/platform/apperr"
	"leadsync_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	warnContactFailed  = "lead was recorded but could not be converted into a contact"
	warnPayloadInvalid = "payload could not be parsed; the delivery was recorded for review"
)

// TenantResolver maps a presented key and source to a tenant.
type TenantResolver interface {
	Resolve(ctx context.Context, key string, source string) (uuid.UUID, error)
}

// EventStore is the event log surface the ingestion flow needs.
type EventStore interface {
	Create(ctx context.Context, e NewEvent) (Event, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, contactID uuid.UUID) error
	MarkError(ctx context.Context, id uuid.UUID, message string) error
}

// ContactCreator persists canonical contacts.
type ContactCreator interface {
	Create(ctx context.Context, p contacts.CreateParams) (contacts.Contact, error)
}

// IngestRequest is one inbound delivery. Body is only read after the key
// resolved to a tenant.
type IngestRequest struct {
	Key    string
	Source string
	Body   io.Reader
}

// IngestResult is returned to the webhook sender.
type IngestResult struct {
	Success   bool       `json:"success"`
	ContactID *uuid.UUID `json:"contactId,omitempty"`
	EventID   uuid.UUID  `json:"eventId"`
	Warning   string     `json:"warning,omitempty"`
}

// Service runs the ingestion flow.
type Service struct {
	resolver   TenantResolver
	events     EventStore
	contacts   ContactCreator
	normalizer *normalizer.Normalizer
	eventBus   events.Bus
	log        *logger.Logger
}

// NewService creates a new ingestion service.
func NewService(resolver TenantResolver, eventStore EventStore, contactCreator ContactCreator, norm *normalizer.Normalizer, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		resolver:   resolver,
		events:     eventStore,
		contacts:   contactCreator,
		normalizer: norm,
		eventBus:   eventBus,
		log:        log,
	}
}

// Ingest authenticates, records and normalizes one delivery.
//
// Authentication failures return an unauthorized error and leave no trace in
// the event log. Once the event is recorded, every later failure is written to
// the event and acknowledged with a warning instead of an error.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	start := time.Now()
	// Stored as sent; the resolver and normalizer fold case for matching.
	source := strings.TrimSpace(req.Source)

	tenantID, err := s.resolver.Resolve(ctx, req.Key, source)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			s.eventBus.Publish(ctx, events.WebhookRejected{BaseEvent: events.NewBaseEvent(), Source: source})
		}
		return IngestResult{}, err
	}

	raw, payload, parseErr := readPayload(req.Body)
	raw = storableText(raw)

	event, err := s.events.Create(ctx, NewEvent{
		TenantID:   tenantID,
		Source:     source,
		EventType:  normalizer.EventType(payload),
		RawPayload: raw,
		IsTest:     normalizer.IsTest(payload),
	})
	if err != nil {
		s.log.DatabaseError("record webhook event", err)
		return IngestResult{}, apperr.Wrap(apperr.KindInternal, "failed to record webhook event", err)
	}

	result := IngestResult{Success: true, EventID: event.ID}

	if parseErr != nil {
		s.fail(ctx, event, parseErr)
		result.Warning = warnPayloadInvalid
		s.finish(ctx, event, StatusError, nil, start)
		return result, nil
	}

	lead := s.normalizer.Normalize(source, payload)
	contact, err := s.contacts.Create(ctx, contacts.CreateParams{
		TenantID: tenantID,
		Name:     lead.Name,
		Phone:    lead.Phone,
		Email:    lead.Email,
		Source:   source,
		Status:   contacts.StatusNew,
		Tags:     lead.Tags,
		Notes:    lead.Notes,
		Metadata: lead.Metadata,
	})
	if err != nil {
		s.log.Error("webhook: failed to create contact", "error", err, "eventId", event.ID, "source", source)
		s.fail(ctx, event, err)
		result.Warning = warnContactFailed
		s.finish(ctx, event, StatusError, nil, start)
		return result, nil
	}

	if err := s.markProcessed(ctx, event.ID, contact.ID); err != nil {
		s.log.Error("webhook: failed to mark event processed", "error", err, "eventId", event.ID, "contactId", contact.ID)
	}
	result.ContactID = &contact.ID
	s.finish(ctx, event, StatusProcessed, &contact.ID, start)
	return result, nil
}

// markProcessed tries the outcome update twice. The contact already exists, so
// a transient failure here would otherwise leave the event in received.
func (s *Service) markProcessed(ctx context.Context, eventID, contactID uuid.UUID) error {
	err := s.events.MarkProcessed(ctx, eventID, contactID)
	if err == nil || errors.Is(err, ErrEventFinalized) || errors.Is(err, ErrEventNotFound) {
		return err
	}
	s.log.Warn("webhook: retrying processed update", "error", err, "eventId", eventID)
	return s.events.MarkProcessed(ctx, eventID, contactID)
}

func (s *Service) fail(ctx context.Context, event Event, cause error) {
	if err := s.events.MarkError(ctx, event.ID, cause.Error()); err != nil {
		s.log.Error("webhook: failed to mark event error", "error", err, "eventId", event.ID)
	}
}

func (s *Service) finish(ctx context.Context, event Event, status string, contactID *uuid.UUID, start time.Time) {
	s.log.WithContext(ctx).WebhookEvent(event.Source, status, event.TenantID.String(), event.ID.String())
	if event.IsTest {
		s.log.Info("webhook: test delivery", "eventId", event.ID, "source", event.Source)
	}
	s.eventBus.Publish(ctx, events.LeadIngested{
		BaseEvent:      events.NewBaseEvent(),
		WebhookEventID: event.ID,
		TenantID:       event.TenantID,
		Source:         event.Source,
		Status:         status,
		ContactID:      contactID,
		IsTest:         event.IsTest,
		Duration:       time.Since(start),
	})
}

// readPayload reads and decodes the body. The raw text is returned even when
// decoding fails so the event log keeps what the sender actually sent.
func readPayload(body io.Reader) (string, any, error) {
	if body == nil {
		return "", nil, errors.New("empty request body")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return string(data), nil, fmt.Errorf("payload exceeds %d bytes", tooLarge.Limit)
		}
		return string(data), nil, fmt.Errorf("read payload: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", nil, errors.New("empty request body")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return string(data), nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	return string(data), payload, nil
}

// storableText strips what a TEXT column cannot hold.
func storableText(raw string) string {
	return strings.ToValidUTF8(strings.ReplaceAll(raw, "\x00", ""), "\uFFFD")
}
