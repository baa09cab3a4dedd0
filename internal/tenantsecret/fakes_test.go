package tenantsecret

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu      sync.Mutex
	secrets []Secret
	failErr error
}

func (m *memoryStore) Create(_ context.Context, s Secret) (Secret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.IsActive = true
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.secrets = append(m.secrets, s)
	return s, nil
}

func (m *memoryStore) FindActiveTenant(_ context.Context, secretHash string, source string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return uuid.UUID{}, m.failErr
	}
	for _, s := range m.secrets {
		if s.SecretHash == secretHash && s.Source == source && s.IsActive {
			return s.TenantID, nil
		}
	}
	return uuid.UUID{}, ErrSecretNotFound
}

func (m *memoryStore) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]Secret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Secret
	for _, s := range m.secrets {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryStore) Deactivate(_ context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.secrets {
		if m.secrets[i].ID == id && m.secrets[i].TenantID == tenantID {
			m.secrets[i].IsActive = false
			return nil
		}
	}
	return ErrSecretNotFound
}
