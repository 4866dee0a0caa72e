// Package memory is an in-process implementation of the settlement storage
// used for local runs (STORAGE_DRIVER=memory) and tests.
//
// It mirrors the Postgres repositories closely enough for the services to
// behave identically: FOR UPDATE reads take a per-row lock held until the
// enclosing transaction ends, and a failed transaction is rolled back through
// an undo log. Reads are not isolated from uncommitted writes.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

// Store holds every aggregate behind one mutex. Row locks live in a separate
// arena so a transaction waiting on a budget row never blocks unrelated work.
type Store struct {
	mu sync.Mutex

	companies map[string]*repository.Company
	users     map[string]*repository.User
	products  map[string]*repository.Product
	carts     map[string]map[string]int

	budgets        map[string]*repository.Budget
	budgetByPeriod map[string]string
	ledger         []*repository.LedgerEntry

	requests       map[string]*repository.OrderRequest
	orders         map[string]*repository.Order
	orderByRequest map[string]string

	outbox    []*repository.OutboxEvent
	outboxSeq int64

	locks *lockArena
	now   func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		companies:      make(map[string]*repository.Company),
		users:          make(map[string]*repository.User),
		products:       make(map[string]*repository.Product),
		carts:          make(map[string]map[string]int),
		budgets:        make(map[string]*repository.Budget),
		budgetByPeriod: make(map[string]string),
		requests:       make(map[string]*repository.OrderRequest),
		orders:         make(map[string]*repository.Order),
		orderByRequest: make(map[string]string),
		locks:          newLockArena(),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// ── Transactions ──────────────────────────────────────────────────────────────

type txKey struct{}

type txState struct {
	undo []func()
	held []string
}

// InTransaction runs fn with a transaction in its context. If fn fails every
// write it made is reverted. Row locks are released when fn returns.
func (s *Store) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	tx := &txState{}
	defer func() {
		for i := len(tx.held) - 1; i >= 0; i-- {
			s.locks.release(tx.held[i])
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// onRollback registers an undo step. Callers hold s.mu; the step runs with
// s.mu held as well.
func (s *Store) onRollback(ctx context.Context, undo func()) {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok {
		tx.undo = append(tx.undo, undo)
	}
}

// lockRow takes the row lock for key until the transaction in ctx ends.
// Outside a transaction it is a no-op, like FOR UPDATE under autocommit.
func (s *Store) lockRow(ctx context.Context, key string) error {
	tx, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		return nil
	}
	for _, held := range tx.held {
		if held == key {
			return nil
		}
	}
	if err := s.locks.acquire(ctx, key); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to lock row")
	}
	tx.held = append(tx.held, key)
	return nil
}

// ── Row lock arena ────────────────────────────────────────────────────────────

// lockArena hands out one mutex per key. Each lock is a 1-slot channel so
// waiting can be abandoned when the context is cancelled.
type lockArena struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newLockArena() *lockArena {
	return &lockArena{locks: make(map[string]chan struct{})}
}

func (a *lockArena) slot(key string) chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	ch, ok := a.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		a.locks[key] = ch
	}
	return ch
}

func (a *lockArena) acquire(ctx context.Context, key string) error {
	select {
	case a.slot(key) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *lockArena) release(key string) {
	<-a.slot(key)
}
