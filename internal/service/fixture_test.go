package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/internal/repository/memory"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
	"github.com/pesio-ai/be-procurement-settlement/pkg/logger"
	"github.com/pesio-ai/be-procurement-settlement/pkg/metrics"
)

var fixedNow = time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)

const (
	companyID      = "c-1"
	otherCompanyID = "c-2"
	adminID        = "u-admin"
	employeeID     = "u-emp"
	colleagueID    = "u-emp-2"
	otherAdminID   = "u-admin-2"
	chipsID        = "p-chips"
	cookiesID      = "p-cookies"
	juiceID        = "p-juice"
)

type recordingNotifier struct {
	mu       sync.Mutex
	created  []*repository.OrderRequest
	admins   [][]string
	resolved []*repository.OrderRequest
}

func (n *recordingNotifier) OrderRequestCreated(ctx context.Context, req *repository.OrderRequest, adminIDs []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, req)
	n.admins = append(n.admins, adminIDs)
}

func (n *recordingNotifier) OrderRequestResolved(ctx context.Context, req *repository.OrderRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resolved = append(n.resolved, req)
}

// flakyTx fails the first `failures` transactions with a retryable error
// after fn has run, so every write of the failed attempt is rolled back.
type flakyTx struct {
	inner    Transactor
	mu       sync.Mutex
	failures int
	attempts int
}

func (f *flakyTx) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.attempts++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()

	return f.inner.InTransaction(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		if fail {
			return errors.Retryable(nil, "could not serialize access due to concurrent update")
		}
		return nil
	})
}

type fixture struct {
	store    *memory.Store
	metrics  *metrics.Metrics
	notifier *recordingNotifier
	budget   *BudgetService
	orders   *OrderService
	requests *OrderRequestService
}

type fixtureOption func(*Stores)

func withTransactor(tx Transactor) fixtureOption {
	return func(s *Stores) { s.Tx = tx }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	store := memory.New()
	store.PutCompany(&repository.Company{
		ID:      companyID,
		Name:    "Acme",
		Address: &repository.Address{Zipcode: "04524", Line1: "1 Main St", FeeZone: repository.FeeZoneStandard},
	})
	store.PutCompany(&repository.Company{
		ID:      otherCompanyID,
		Name:    "Globex",
		Address: &repository.Address{Zipcode: "63000", Line1: "9 Harbour Rd", FeeZone: repository.FeeZoneRemoteIsland},
	})
	store.PutUser(&repository.User{ID: adminID, CompanyID: companyID, Name: "Ada", Role: repository.RoleAdmin})
	store.PutUser(&repository.User{ID: employeeID, CompanyID: companyID, Name: "Eve", Role: repository.RoleUser})
	store.PutUser(&repository.User{ID: colleagueID, CompanyID: companyID, Name: "Cal", Role: repository.RoleUser})
	store.PutUser(&repository.User{ID: otherAdminID, CompanyID: otherCompanyID, Name: "Gus", Role: repository.RoleAdmin})
	store.PutProduct(&repository.Product{ID: chipsID, Name: "Chips", Price: 10000})
	store.PutProduct(&repository.Product{ID: cookiesID, Name: "Cookies", Price: 5000})
	store.PutProduct(&repository.Product{ID: juiceID, Name: "Juice", Price: 30000})

	stores := Stores{
		Tx:       store,
		Users:    store.Users(),
		Budgets:  store.Budgets(),
		Ledger:   store.Ledger(),
		Products: store.Products(),
		Carts:    store.Carts(),
		Orders:   store.Orders(),
		Requests: store.OrderRequests(),
		Outbox:   store.Outbox(),
	}
	for _, opt := range opts {
		opt(&stores)
	}

	m := metrics.NewUnregistered()
	log := logger.Nop()
	clock := func() time.Time { return fixedNow }
	prices := NewPriceLookup(stores.Products)
	notifier := &recordingNotifier{}

	budget := NewBudgetService(stores, BudgetOptions{MaxAttempts: 3, Now: clock}, m, log)
	return &fixture{
		store:    store,
		metrics:  m,
		notifier: notifier,
		budget:   budget,
		orders:   NewOrderService(stores, budget, prices, m, log),
		requests: NewOrderRequestService(stores, prices, notifier, clock, m, log),
	}
}

// seedBudget creates the current-period budget of companyID.
func (f *fixture) seedBudget(t *testing.T, company string, amount int64) *repository.Budget {
	t.Helper()
	b := &repository.Budget{
		ID:            "b-" + company,
		CompanyID:     company,
		Year:          fixedNow.Year(),
		Month:         int(fixedNow.Month()),
		InitialAmount: amount,
		CurrentAmount: amount,
	}
	require.NoError(t, f.store.Budgets().Create(context.Background(), b))
	return b
}

func (f *fixture) currentAmount(t *testing.T, company string) int64 {
	t.Helper()
	b, err := f.store.Budgets().GetByPeriod(context.Background(), company, fixedNow.Year(), int(fixedNow.Month()))
	require.NoError(t, err)
	return b.CurrentAmount
}

func (f *fixture) ledger(t *testing.T, budgetID string) []*repository.LedgerEntry {
	t.Helper()
	entries, err := f.store.Ledger().ListByBudget(context.Background(), budgetID)
	require.NoError(t, err)
	return entries
}

func (f *fixture) orderCount(t *testing.T, company string) int64 {
	t.Helper()
	_, total, err := f.store.Orders().ListByCompany(context.Background(), company, nil, 100, 0)
	require.NoError(t, err)
	return total
}

// standardOrder is 3 chips + 3 cookies: subtotal 45000, shipping 3000.
func standardOrder() *CreateOrderInput {
	return &CreateOrderInput{
		UserID: adminID,
		Role:   repository.RoleAdmin,
		Items: []OrderLine{
			{ProductID: chipsID, Quantity: 3},
			{ProductID: cookiesID, Quantity: 3},
		},
	}
}

func ptr[T any](v T) *T { return &v }
