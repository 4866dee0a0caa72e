package service

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
	"github.com/pesio-ai/be-procurement-settlement/pkg/metrics"
)

func TestDeductBudget(t *testing.T) {
	f := newFixture(t)
	b := f.seedBudget(t, companyID, 100000)

	remaining, err := f.budget.DeductBudget(context.Background(), employeeID, 30000)
	require.NoError(t, err)
	assert.Equal(t, int64(70000), remaining)
	assert.Equal(t, int64(70000), f.currentAmount(t, companyID))

	entries := f.ledger(t, b.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, repository.LedgerEntryWithdrawal, entries[0].Type)
	assert.Equal(t, int64(-30000), entries[0].Amount)
	assert.Equal(t, int64(100000), entries[0].BeforeAmount)
	assert.Equal(t, int64(70000), entries[0].AfterAmount)
	assert.Equal(t, employeeID, entries[0].CreatedBy)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Deductions.WithLabelValues(metrics.DeductionOK)))
}

func TestDeductBudget_ExactRemainderSucceeds(t *testing.T) {
	f := newFixture(t)
	f.seedBudget(t, companyID, 5000)

	remaining, err := f.budget.DeductBudget(context.Background(), employeeID, 5000)
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestDeductBudget_Insufficient(t *testing.T) {
	f := newFixture(t)
	b := f.seedBudget(t, companyID, 1000)

	_, err := f.budget.DeductBudget(context.Background(), employeeID, 1001)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))
	assert.Contains(t, err.Error(), "remaining 1000, required 1001")

	assert.Equal(t, int64(1000), f.currentAmount(t, companyID))
	assert.Empty(t, f.ledger(t, b.ID))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Deductions.WithLabelValues(metrics.DeductionInsufficient)))
}

func TestDeductBudget_Validation(t *testing.T) {
	f := newFixture(t)
	f.seedBudget(t, companyID, 1000)

	_, err := f.budget.DeductBudget(context.Background(), employeeID, 0)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	_, err = f.budget.DeductBudget(context.Background(), employeeID, -5)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	_, err = f.budget.DeductBudget(context.Background(), "u-ghost", 10)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestDeductBudget_NoBudgetForPeriod(t *testing.T) {
	f := newFixture(t)

	_, err := f.budget.DeductBudget(context.Background(), employeeID, 10)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	assert.Contains(t, err.Error(), "c-1/2026-10")
}

func TestDeductBudget_RetriesSerializationFailures(t *testing.T) {
	tx := &flakyTx{failures: 2}
	f := newFixture(t, withTransactor(tx))
	tx.inner = f.store
	b := f.seedBudget(t, companyID, 10000)

	remaining, err := f.budget.DeductBudget(context.Background(), employeeID, 4000)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), remaining)
	assert.Equal(t, 3, tx.attempts)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.DeductionRetries))
	assert.Len(t, f.ledger(t, b.ID), 1, "failed attempts must not leave ledger rows behind")
}

func TestDeductBudget_GivesUpAfterMaxAttempts(t *testing.T) {
	tx := &flakyTx{failures: 10}
	f := newFixture(t, withTransactor(tx))
	tx.inner = f.store
	b := f.seedBudget(t, companyID, 10000)

	_, err := f.budget.DeductBudget(context.Background(), employeeID, 4000)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))
	assert.Contains(t, err.Error(), "did not complete after 3 attempts")
	assert.Equal(t, 3, tx.attempts)
	assert.Equal(t, int64(10000), f.currentAmount(t, companyID))
	assert.Empty(t, f.ledger(t, b.ID))
}

func TestEstimateRemainingBudget(t *testing.T) {
	f := newFixture(t)
	f.seedBudget(t, companyID, 100000)
	ctx := context.Background()

	left, err := f.budget.EstimateRemainingBudget(ctx, employeeID, 30000)
	require.NoError(t, err)
	assert.Equal(t, int64(70000), left)

	left, err = f.budget.EstimateRemainingBudget(ctx, employeeID, 120000)
	require.NoError(t, err)
	assert.Equal(t, int64(-20000), left)

	_, err = f.budget.EstimateRemainingBudget(ctx, employeeID, -1)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	assert.Equal(t, int64(100000), f.currentAmount(t, companyID), "estimates never write")
}

func TestUpdateBudget_CreatesThenUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.budget.UpdateBudget(ctx, &UpdateBudgetRequest{
		CompanyID: companyID, Year: 2026, Month: 11, UpdatedBy: adminID,
	})
	require.NoError(t, err)
	assert.Zero(t, created.InitialAmount)
	assert.Zero(t, created.CurrentAmount)

	updated, err := f.budget.UpdateBudget(ctx, &UpdateBudgetRequest{
		CompanyID: companyID, Year: 2026, Month: 11,
		InitialAmount: 300000, CurrentAmount: 250000, UpdatedBy: adminID,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err := f.store.Budgets().GetByPeriod(ctx, companyID, 2026, 11)
	require.NoError(t, err)
	assert.Equal(t, int64(300000), got.InitialAmount)
	assert.Equal(t, int64(250000), got.CurrentAmount)
	assert.Empty(t, f.ledger(t, got.ID), "manual updates are not ledgered")
}

func TestUpdateBudget_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  UpdateBudgetRequest
		code errors.Code
	}{
		{"negative current", UpdateBudgetRequest{CompanyID: companyID, Year: 2026, Month: 10, CurrentAmount: -1}, errors.ErrCodeInvalidInput},
		{"initial above ceiling", UpdateBudgetRequest{CompanyID: companyID, Year: 2026, Month: 10, InitialAmount: BudgetCeiling + 1}, errors.ErrCodeInvalidInput},
		{"month out of range", UpdateBudgetRequest{CompanyID: companyID, Year: 2026, Month: 13}, errors.ErrCodeInvalidInput},
		{"unknown company", UpdateBudgetRequest{CompanyID: "c-ghost", Year: 2026, Month: 10}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.budget.UpdateBudget(ctx, &tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}

	_, err := f.budget.UpdateBudget(ctx, &UpdateBudgetRequest{
		CompanyID: companyID, Year: 2026, Month: 10,
		InitialAmount: BudgetCeiling, CurrentAmount: BudgetCeiling,
	})
	assert.NoError(t, err, "the ceiling itself is allowed")
}

func TestListLedgerEntries(t *testing.T) {
	f := newFixture(t)
	f.seedBudget(t, companyID, 100000)
	ctx := context.Background()

	_, err := f.budget.DeductBudget(ctx, employeeID, 1000)
	require.NoError(t, err)
	_, err = f.budget.DeductBudget(ctx, adminID, 2000)
	require.NoError(t, err)

	entries, err := f.budget.ListLedgerEntries(ctx, employeeID, 2026, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(99000), entries[0].AfterAmount)
	assert.Equal(t, entries[0].AfterAmount, entries[1].BeforeAmount)
	assert.Equal(t, int64(97000), entries[1].AfterAmount)

	_, err = f.budget.ListLedgerEntries(ctx, employeeID, 2026, 0)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
}

func TestDeductBudget_ConcurrentNeverOverdraws(t *testing.T) {
	const (
		workers = 20
		amount  = int64(7000)
	)
	f := newFixture(t)
	b := f.seedBudget(t, companyID, amount*(workers-1))

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
			_, err := f.budget.DeductBudget(context.Background(), employeeID, amount)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.IsCode(err, errors.ErrCodeForbidden):
				forbidden++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers-1, succeeded)
	assert.Equal(t, 1, forbidden)
	assert.Zero(t, f.currentAmount(t, companyID))

	entries := f.ledger(t, b.ID)
	require.Len(t, entries, workers-1)
	balance := b.InitialAmount
	for _, e := range entries {
		assert.Equal(t, -amount, e.Amount)
		assert.Equal(t, balance, e.BeforeAmount)
		assert.Equal(t, e.BeforeAmount+e.Amount, e.AfterAmount)
		balance = e.AfterAmount
	}
}

func TestWithdraw_RejectsNegativeAmount(t *testing.T) {
	f := newFixture(t)
	b := f.seedBudget(t, companyID, 100000)

	err := f.store.InTransaction(context.Background(), func(ctx context.Context) error {
		_, err := f.budget.withdraw(ctx, companyID, -20000, withdrawal{createdBy: adminID})
		return err
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
	assert.Equal(t, int64(100000), f.currentAmount(t, companyID))
	assert.Empty(t, f.ledger(t, b.ID))
}
