package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/database"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
	"github.com/pesio-ai/be-procurement-settlement/pkg/logger"
	"github.com/pesio-ai/be-procurement-settlement/pkg/metrics"
)

// openTestDB connects to TEST_DATABASE_URL and applies the schema. The test
// is skipped when the variable is unset.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewFromURL(ctx, url)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)
	_, err = db.Exec(ctx, string(schema))
	require.NoError(t, err)
	return db
}

func TestPostgres_ConcurrentOrdersNeverOverdraw(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	run := uuid.NewString()[:8]
	company := "it-company-" + run
	admin := "it-admin-" + run
	chips := "it-chips-" + run
	cookies := "it-cookies-" + run

	_, err := db.Exec(ctx, `INSERT INTO companies (id, name, zipcode, address_line1, fee_zone) VALUES ($1, 'Integration', '04524', '1 Main St', 'STANDARD')`, company)
	require.NoError(t, err)
	_, err = db.Exec(ctx, `INSERT INTO users (id, company_id, name, email, role) VALUES ($1, $2, 'Admin', $3, 'ADMIN')`, admin, company, admin+"@it.test")
	require.NoError(t, err)
	_, err = db.Exec(ctx, `INSERT INTO products (id, name, price) VALUES ($1, 'Chips', 10000), ($2, 'Cookies', 5000)`, chips, cookies)
	require.NoError(t, err)

	const (
		workers   = 8
		orderCost = int64(48000)
	)
	now := time.Now().UTC()
	budgets := repository.NewBudgetRepository(db)
	budget := &repository.Budget{
		ID:            uuid.NewString(),
		CompanyID:     company,
		Year:          now.Year(),
		Month:         int(now.Month()),
		InitialAmount: orderCost * (workers - 1),
		CurrentAmount: orderCost * (workers - 1),
	}
	require.NoError(t, budgets.Create(ctx, budget))

	stores := Stores{
		Tx:       db,
		Users:    repository.NewUserRepository(db),
		Budgets:  budgets,
		Ledger:   repository.NewLedgerRepository(db),
		Products: repository.NewProductRepository(db),
		Carts:    repository.NewCartRepository(db),
		Orders:   repository.NewOrderRepository(db),
		Requests: repository.NewOrderRequestRepository(db),
		Outbox:   repository.NewOutboxRepository(db),
	}
	m := metrics.NewUnregistered()
	log := logger.Nop()
	budgetService := NewBudgetService(stores, BudgetOptions{MaxAttempts: 5}, m, log)
	orders := NewOrderService(stores, budgetService, NewPriceLookup(stores.Products), m, log)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		forbidden int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orders.CreateOrder(ctx, &CreateOrderInput{
				UserID: admin,
				Role:   repository.RoleAdmin,
				Items: []OrderLine{
					{ProductID: chips, Quantity: 3},
					{ProductID: cookies, Quantity: 3},
				},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.CodeOf(err) == errors.ErrCodeForbidden:
				forbidden++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers-1, succeeded)
	assert.Equal(t, 1, forbidden)

	current, err := budgets.GetByPeriod(ctx, company, budget.Year, budget.Month)
	require.NoError(t, err)
	assert.Equal(t, int64(0), current.CurrentAmount)

	entries, err := stores.Ledger.ListByBudget(ctx, budget.ID)
	require.NoError(t, err)
	require.Len(t, entries, workers-1)
	balance := budget.InitialAmount
	for _, e := range entries {
		assert.Equal(t, balance, e.BeforeAmount)
		assert.Equal(t, -orderCost, e.Amount)
		balance = e.AfterAmount
	}
	assert.Equal(t, int64(0), balance)
}
