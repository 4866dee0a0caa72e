// Package relay forwards committed outbox events to the message broker.
package relay

import (
	"context"
	"time"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/logger"
	"github.com/pesio-ai/be-procurement-settlement/pkg/metrics"
)

type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]*repository.OutboxEvent, error)
	MarkSent(ctx context.Context, ids []int64, at time.Time) error
}

// Publisher delivers a batch of events. It must either deliver every event or
// return an error.
type Publisher interface {
	PublishEvents(ctx context.Context, events []*repository.OutboxEvent) error
}

// Relay polls the outbox and publishes pending events in creation order.
// Delivery is at-least-once: a crash between publish and MarkSent republishes
// the batch, and consumers dedupe on event_id.
type Relay struct {
	tx        Transactor
	outbox    Outbox
	publisher Publisher
	interval  time.Duration
	batch     int
	now       func() time.Time
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// New creates a relay. A non-positive batch defaults to 100.
func New(tx Transactor, outbox Outbox, publisher Publisher, interval time.Duration, batch int, m *metrics.Metrics, log *logger.Logger) *Relay {
	if batch <= 0 {
		batch = 100
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{
		tx:        tx,
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batch:     batch,
		now:       time.Now,
		metrics:   m,
		log:       log,
	}
}

// Run relays until ctx is cancelled. A full batch is followed immediately by
// another pass instead of waiting for the next tick.
func (r *Relay) Run(ctx context.Context) {
	r.log.Info().Dur("interval", r.interval).Int("batch", r.batch).Msg("Outbox relay started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		n, err := r.RelayOnce(ctx)
		if err != nil && ctx.Err() == nil {
			r.log.Error().Err(err).Msg("Outbox relay pass failed")
		}
		if err == nil && n == r.batch {
			continue
		}

		select {
		case <-ctx.Done():
			r.log.Info().Msg("Outbox relay stopped")
			return
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns how many events were sent. The
// fetched rows stay locked until they are marked, so concurrent relays never
// publish the same batch twice.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	var sent int
	err := r.tx.InTransaction(ctx, func(ctx context.Context) error {
		events, err := r.outbox.FetchPending(ctx, r.batch)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		if err := r.publisher.PublishEvents(ctx, events); err != nil {
			r.metrics.OutboxRelayed.WithLabelValues("error").Add(float64(len(events)))
			return err
		}

		ids := make([]int64, len(events))
		for i, e := range events {
			ids[i] = e.ID
		}
		if err := r.outbox.MarkSent(ctx, ids, r.now().UTC()); err != nil {
			return err
		}
		sent = len(events)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if sent > 0 {
		r.metrics.OutboxRelayed.WithLabelValues("sent").Add(float64(sent))
		r.log.Debug().Int("events", sent).Msg("Outbox events relayed")
	}
	return sent, nil
}
