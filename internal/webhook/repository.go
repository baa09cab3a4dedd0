package webhook

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrEventNotFound = errors.New("webhook event not found")
	// ErrEventFinalized is returned when an event already left the received state.
	ErrEventFinalized = errors.New("webhook event already finalized")
)

const maxErrorMessageLen = 1000

// EventRepository is the durable webhook event log.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new event repository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, tenant_id, source, event_type, raw_payload, status, is_test, contact_id, error_message, created_at, processed_at`

// Create records a delivery in the received state.
func (r *EventRepository) Create(ctx context.Context, e NewEvent) (Event, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO webhook_events (tenant_id, source, event_type, raw_payload, status, is_test)
		VALUES ($1, $2, $3, $4, 'received', $5)
		RETURNING `+eventColumns,
		e.TenantID, e.Source, e.EventType, e.RawPayload, e.IsTest,
	)
	return scanEvent(row)
}

// MarkProcessed links the created contact and finalizes the event.
func (r *EventRepository) MarkProcessed(ctx context.Context, id uuid.UUID, contactID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE webhook_events
		SET status = 'processed', contact_id = $2, processed_at = now()
		WHERE id = $1 AND status = 'received'
	`, id, contactID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventFinalized
	}
	return nil
}

// MarkError records the failure message and finalizes the event.
func (r *EventRepository) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	message = truncateMessage(message, maxErrorMessageLen)
	tag, err := r.pool.Exec(ctx, `
		UPDATE webhook_events
		SET status = 'error', error_message = $2, processed_at = now()
		WHERE id = $1 AND status = 'received'
	`, id, message)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventFinalized
	}
	return nil
}

// GetByID returns one event scoped to the tenant.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (Event, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM webhook_events
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	}
	return e, err
}

// List returns the tenant's most recent events.
func (r *EventRepository) List(ctx context.Context, p ListEventsParams) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM webhook_events
		WHERE tenant_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR lower(source) = lower($3))
		ORDER BY created_at DESC
		LIMIT $4
	`, p.TenantID, p.Status, p.Source, p.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkStaleReceived moves events stuck in the received state since before
// the cutoff to error. Such events belong to requests that died mid-flight.
func (r *EventRepository) MarkStaleReceived(ctx context.Context, before time.Time, message string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE webhook_events
		SET status = 'error', error_message = $2, processed_at = now()
		WHERE status = 'received' AND created_at < $1
	`, before, message)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(
		&e.ID, &e.TenantID, &e.Source, &e.EventType, &e.RawPayload, &e.Status, &e.IsTest,
		&e.ContactID, &e.ErrorMessage, &e.CreatedAt, &e.ProcessedAt,
	)
	return e, err
}

// truncateMessage cuts message to at most max bytes without splitting a rune.
func truncateMessage(message string, max int) string {
	if len(message) <= max {
		return message
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut]
}
