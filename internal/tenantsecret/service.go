package tenantsecret

import (
	"context"
	"errors"
	"strings"

	"leadsync_backend/platform/apperr"
	"leadsync_backend/platform/logger"

	"github.com/google/uuid"
)

const errInvalidKey = "invalid webhook key"

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, s Secret) (Secret, error)
	FindActiveTenant(ctx context.Context, secretHash string, source string) (uuid.UUID, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Secret, error)
	Deactivate(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
}

// Service manages webhook secrets and resolves inbound keys to tenants.
type Service struct {
	store Store
	log   *logger.Logger
}

// NewService creates a new secret service.
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// Resolve maps a presented key and source to the owning tenant.
// A secret registered for the exact source wins over one registered for all
// sources. Unknown, inactive or mismatched keys all yield the same
// unauthorized error so callers cannot tell them apart.
func (s *Service) Resolve(ctx context.Context, key string, source string) (uuid.UUID, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.UUID{}, apperr.Unauthorized(errInvalidKey)
	}
	normalized, ok := NormalizeSource(source)
	if !ok {
		return uuid.UUID{}, apperr.Unauthorized(errInvalidKey)
	}

	hash := HashSecret(key)
	tiers := []string{normalized}
	if normalized != SourceAll {
		tiers = append(tiers, SourceAll)
	}

	for _, tier := range tiers {
		tenantID, err := s.store.FindActiveTenant(ctx, hash, tier)
		if err == nil {
			return tenantID, nil
		}
		if !errors.Is(err, ErrSecretNotFound) {
			s.log.DatabaseError("resolve webhook secret", err)
			return uuid.UUID{}, apperr.Wrap(apperr.KindInternal, "failed to resolve webhook key", err)
		}
	}
	return uuid.UUID{}, apperr.Unauthorized(errInvalidKey)
}

// CreateInput describes a new secret.
type CreateInput struct {
	TenantID uuid.UUID
	Name     string
	Source   string
}

// Created carries the stored secret and its plaintext value, which is never
// retrievable again.
type Created struct {
	Secret
	Plaintext string
}

// Create generates and stores a new secret. An empty source means all sources.
func (s *Service) Create(ctx context.Context, in CreateInput) (Created, error) {
	source := SourceAll
	if strings.TrimSpace(in.Source) != "" {
		normalized, ok := NormalizeSource(in.Source)
		if !ok {
			return Created{}, apperr.Validation("invalid source name")
		}
		source = normalized
	}

	plaintext, hash, prefix, err := GenerateSecret()
	if err != nil {
		return Created{}, apperr.Wrap(apperr.KindInternal, "failed to generate secret", err)
	}

	stored, err := s.store.Create(ctx, Secret{
		TenantID:     in.TenantID,
		Name:         strings.TrimSpace(in.Name),
		Source:       source,
		SecretHash:   hash,
		SecretPrefix: prefix,
	})
	if err != nil {
		return Created{}, err
	}
	return Created{Secret: stored, Plaintext: plaintext}, nil
}

// List returns the tenant's secrets.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]Secret, error) {
	return s.store.ListByTenant(ctx, tenantID)
}

// Deactivate soft-deletes a secret owned by the tenant.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	err := s.store.Deactivate(ctx, id, tenantID)
	if errors.Is(err, ErrSecretNotFound) {
		return apperr.NotFound("webhook secret not found")
	}
	return err
}
