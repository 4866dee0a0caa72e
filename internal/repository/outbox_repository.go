package repository

import (
	"context"
	"time"

	"github.com/pesio-ai/be-procurement-settlement/pkg/database"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

// OutboxRepository stores domain events in the same transaction as the rows
// that produced them.
type OutboxRepository struct {
	db *database.DB
}

func NewOutboxRepository(db *database.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Insert appends an event. Must be called inside the business transaction.
func (r *OutboxRepository) Insert(ctx context.Context, event *OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (event_id, event_type, key, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		event.EventID,
		event.EventType,
		event.Key,
		[]byte(event.Payload),
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return database.Wrap(err, "failed to insert outbox event")
	}
	return nil
}

// FetchPending locks up to limit unsent events, oldest first. Rows locked by
// another relay instance are skipped.
func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `
		SELECT id, event_id, event_type, key, payload, created_at
		FROM outbox_events
		WHERE sent_at IS NULL
		ORDER BY id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, database.Wrap(err, "failed to fetch outbox events")
	}
	defer rows.Close()

	events := make([]*OutboxEvent, 0)
	for rows.Next() {
		e := &OutboxEvent{}
		var payload []byte
		if err := rows.Scan(&e.ID, &e.EventID, &e.EventType, &e.Key, &payload, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan outbox event")
		}
		e.Payload = payload
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Wrap(err, "failed to read outbox events")
	}
	return events, nil
}

// MarkSent stamps events as delivered to the broker.
func (r *OutboxRepository) MarkSent(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `UPDATE outbox_events SET sent_at = $2 WHERE id = ANY($1)`, ids, at)
	if err != nil {
		return database.Wrap(err, "failed to mark outbox events sent")
	}
	return nil
}
