package tenantsecret

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSecretNotFound = errors.New("webhook secret not found")

// Repository provides data access for webhook secrets.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new secret repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const secretColumns = `id, tenant_id, name, source, secret_hash, secret_prefix, is_active, created_at, updated_at`

// Create inserts a new active secret.
func (r *Repository) Create(ctx context.Context, s Secret) (Secret, error) {
	var out Secret
	err := r.pool.QueryRow(ctx, `
		INSERT INTO webhook_secrets (tenant_id, name, source, secret_hash, secret_prefix)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+secretColumns,
		s.TenantID, s.Name, s.Source, s.SecretHash, s.SecretPrefix,
	).Scan(
		&out.ID, &out.TenantID, &out.Name, &out.Source, &out.SecretHash, &out.SecretPrefix,
		&out.IsActive, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

// FindActiveTenant returns the tenant owning an active secret with the given
// hash registered for exactly the given source.
func (r *Repository) FindActiveTenant(ctx context.Context, secretHash string, source string) (uuid.UUID, error) {
	var tenantID uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id
		FROM webhook_secrets
		WHERE secret_hash = $1 AND source = $2 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1
	`, secretHash, source).Scan(&tenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.UUID{}, ErrSecretNotFound
	}
	return tenantID, err
}

// ListByTenant returns all secrets of a tenant, active and deactivated.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Secret, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+secretColumns+`
		FROM webhook_secrets
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var secrets []Secret
	for rows.Next() {
		var s Secret
		if err := rows.Scan(
			&s.ID, &s.TenantID, &s.Name, &s.Source, &s.SecretHash, &s.SecretPrefix,
			&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		secrets = append(secrets, s)
	}
	return secrets, rows.Err()
}

// Deactivate soft-deletes a secret so historical webhook events keep their meaning.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE webhook_secrets SET is_active = false, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSecretNotFound
	}
	return nil
}
