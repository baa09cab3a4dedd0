package contacts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrContactNotFound = errors.New("contact not found")

// Repository provides data access for contacts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new contact repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const contactColumns = `id, tenant_id, name, phone, email, source, status, tags, notes, metadata, created_at, updated_at`

// Create inserts a new contact and returns the stored row.
func (r *Repository) Create(ctx context.Context, p CreateParams) (Contact, error) {
	status := p.Status
	if status == "" {
		status = StatusNew
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (tenant_id, name, phone, email, source, status, tags, notes, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+contactColumns,
		p.TenantID, p.Name, nullable(p.Phone), nullable(p.Email), p.Source, status, tags, nullable(p.Notes), metadata,
	)
	return scanContact(row)
}

// GetByID returns a contact scoped to the tenant.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (Contact, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	c, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrContactNotFound
	}
	return c, err
}

// ListParams filters a contact listing.
type ListParams struct {
	TenantID uuid.UUID
	Source   string
	Limit    int
}

// List returns the tenant's most recent contacts.
func (r *Repository) List(ctx context.Context, p ListParams) ([]Contact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE tenant_id = $1 AND ($2 = '' OR source = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, p.TenantID, p.Source, p.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanContact(row pgx.Row) (Contact, error) {
	var c Contact
	err := row.Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Phone, &c.Email, &c.Source, &c.Status,
		&c.Tags, &c.Notes, &c.Metadata, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func nullable(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
