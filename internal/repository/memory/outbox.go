package memory

import (
	"context"
	"time"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
)

type OutboxRepository struct{ s *Store }

func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{s: s} }

func (r *OutboxRepository) Insert(ctx context.Context, event *repository.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.outboxSeq++
	event.ID = r.s.outboxSeq
	event.CreatedAt = r.s.now()
	stored := *event
	r.s.outbox = append(r.s.outbox, &stored)

	r.s.onRollback(ctx, func() {
		for i, e := range r.s.outbox {
			if e.ID == stored.ID {
				r.s.outbox = append(r.s.outbox[:i], r.s.outbox[i+1:]...)
				return
			}
		}
	})
	return nil
}

// FetchPending returns up to limit unsent events, oldest first.
func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]*repository.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	events := make([]*repository.OutboxEvent, 0, limit)
	for _, e := range r.s.outbox {
		if len(events) == limit {
			break
		}
		if e.SentAt == nil {
			cp := *e
			events = append(events, &cp)
		}
	}
	return events, nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, ids []int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	for _, e := range r.s.outbox {
		if _, ok := want[e.ID]; ok && e.SentAt == nil {
			prev := e.SentAt
			sentAt := at
			e.SentAt = &sentAt
			target := e
			r.s.onRollback(ctx, func() { target.SentAt = prev })
		}
	}
	return nil
}

// Events returns a snapshot of every stored event.
func (r *OutboxRepository) Events() []*repository.OutboxEvent {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	events := make([]*repository.OutboxEvent, len(r.s.outbox))
	for i, e := range r.s.outbox {
		cp := *e
		events[i] = &cp
	}
	return events
}
