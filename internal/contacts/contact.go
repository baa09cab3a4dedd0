// Package contacts holds the canonical lead record produced by webhook ingestion.
package contacts

import (
	"time"

	"github.com/google/uuid"
)

// StatusNew is the lifecycle label given to freshly ingested leads.
const StatusNew = "new"

// Contact is a tenant-scoped canonical lead.
type Contact struct {
	ID        uuid.UUID         `json:"id"`
	TenantID  uuid.UUID         `json:"tenantId"`
	Name      string            `json:"name"`
	Phone     *string           `json:"phone,omitempty"`
	Email     *string           `json:"email,omitempty"`
	Source    string            `json:"source"`
	Status    string            `json:"status"`
	Tags      []string          `json:"tags"`
	Notes     *string           `json:"notes,omitempty"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// CreateParams describes a contact to insert. Empty phone, email and notes are
// stored as NULL.
type CreateParams struct {
	TenantID uuid.UUID
	Name     string
	Phone    string
	Email    string
	Source   string
	Status   string
	Tags     []string
	Notes    string
	Metadata map[string]string
}
