package webhook

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"leadsync_backend/internal/contacts"
	"leadsync_backend/internal/tenantsecret"

	"github.com/google/uuid"
)

type memoryEvents struct {
	mu        sync.Mutex
	events    []Event
	createErr error
	// markProcessedErrs fail that many MarkProcessed calls before succeeding.
	markProcessedErrs int
}

func (m *memoryEvents) Create(_ context.Context, e NewEvent) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return Event{}, m.createErr
	}
	ev := Event{
		ID:         uuid.New(),
		TenantID:   e.TenantID,
		Source:     e.Source,
		EventType:  e.EventType,
		RawPayload: e.RawPayload,
		Status:     StatusReceived,
		IsTest:     e.IsTest,
		CreatedAt:  time.Now(),
	}
	m.events = append(m.events, ev)
	return ev, nil
}

func (m *memoryEvents) MarkProcessed(_ context.Context, id uuid.UUID, contactID uuid.UUID) error {
	m.mu.Lock()
	if m.markProcessedErrs > 0 {
		m.markProcessedErrs--
		m.mu.Unlock()
		return errors.New("connection reset")
	}
	m.mu.Unlock()
	return m.finalize(id, func(e *Event) {
		e.Status = StatusProcessed
		e.ContactID = &contactID
	})
}

func (m *memoryEvents) MarkError(_ context.Context, id uuid.UUID, message string) error {
	return m.finalize(id, func(e *Event) {
		e.Status = StatusError
		e.ErrorMessage = &message
	})
}

func (m *memoryEvents) finalize(id uuid.UUID, apply func(*Event)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID != id {
			continue
		}
		if m.events[i].Status != StatusReceived {
			return ErrEventFinalized
		}
		apply(&m.events[i])
		now := time.Now()
		m.events[i].ProcessedAt = &now
		return nil
	}
	return ErrEventNotFound
}

func (m *memoryEvents) GetByID(_ context.Context, id uuid.UUID, tenantID uuid.UUID) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id && e.TenantID == tenantID {
			return e, nil
		}
	}
	return Event{}, ErrEventNotFound
}

func (m *memoryEvents) List(_ context.Context, p ListEventsParams) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.TenantID != p.TenantID || (p.Status != "" && e.Status != p.Status) || (p.Source != "" && !strings.EqualFold(e.Source, p.Source)) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryEvents) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *memoryEvents) only() Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[0]
}

type memoryContacts struct {
	mu       sync.Mutex
	contacts []contacts.Contact
	err      error
}

func (m *memoryContacts) Create(_ context.Context, p contacts.CreateParams) (contacts.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return contacts.Contact{}, m.err
	}
	c := contacts.Contact{
		ID:       uuid.New(),
		TenantID: p.TenantID,
		Name:     p.Name,
		Source:   p.Source,
		Status:   p.Status,
		Tags:     p.Tags,
		Metadata: p.Metadata,
	}
	if p.Phone != "" {
		c.Phone = &p.Phone
	}
	if p.Email != "" {
		c.Email = &p.Email
	}
	m.contacts = append(m.contacts, c)
	return c, nil
}

// secretStore backs a real tenantsecret.Service so the two-tier key
// resolution is exercised end to end.
type secretStore struct {
	secrets []tenantsecret.Secret
}

func (s *secretStore) add(tenantID uuid.UUID, source string, active bool) string {
	plaintext, hash, prefix, err := tenantsecret.GenerateSecret()
	if err != nil {
		panic(err)
	}
	s.secrets = append(s.secrets, tenantsecret.Secret{
		ID: uuid.New(), TenantID: tenantID, Source: source,
		SecretHash: hash, SecretPrefix: prefix, IsActive: active,
	})
	return plaintext
}

func (s *secretStore) Create(_ context.Context, secret tenantsecret.Secret) (tenantsecret.Secret, error) {
	s.secrets = append(s.secrets, secret)
	return secret, nil
}

func (s *secretStore) FindActiveTenant(_ context.Context, secretHash string, source string) (uuid.UUID, error) {
	for _, secret := range s.secrets {
		if secret.SecretHash == secretHash && secret.Source == source && secret.IsActive {
			return secret.TenantID, nil
		}
	}
	return uuid.UUID{}, tenantsecret.ErrSecretNotFound
}

func (s *secretStore) ListByTenant(context.Context, uuid.UUID) ([]tenantsecret.Secret, error) {
	return s.secrets, nil
}

func (s *secretStore) Deactivate(context.Context, uuid.UUID, uuid.UUID) error {
	return errors.New("not implemented")
}
