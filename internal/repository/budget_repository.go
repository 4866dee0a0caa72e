package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pesio-ai/be-procurement-settlement/pkg/database"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

const budgetPeriodConstraint = "budgets_company_period_key"

// BudgetRepository handles budget rows. Amount changes made by settlement go
// through UpdateCurrentAmount together with a LedgerRepository.Append in the
// same transaction.
type BudgetRepository struct {
	db *database.DB
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *database.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

const budgetColumns = `
	id, company_id, year, month, initial_amount, current_amount, created_at, updated_at
`

// GetByPeriod reads the budget of a company for one month without locking.
func (r *BudgetRepository) GetByPeriod(ctx context.Context, companyID string, year, month int) (*Budget, error) {
	query := `SELECT ` + budgetColumns + `
		FROM budgets
		WHERE company_id = $1 AND year = $2 AND month = $3
	`
	return r.getOne(ctx, query, companyID, year, month)
}

// GetByPeriodForUpdate reads the budget and takes a row lock held until the
// surrounding transaction ends. Concurrent deductions for the same period
// queue on this lock; other periods are unaffected.
func (r *BudgetRepository) GetByPeriodForUpdate(ctx context.Context, companyID string, year, month int) (*Budget, error) {
	query := `SELECT ` + budgetColumns + `
		FROM budgets
		WHERE company_id = $1 AND year = $2 AND month = $3
		FOR UPDATE
	`
	return r.getOne(ctx, query, companyID, year, month)
}

func (r *BudgetRepository) getOne(ctx context.Context, query, companyID string, year, month int) (*Budget, error) {
	b := &Budget{}
	err := r.db.QueryRow(ctx, query, companyID, year, month).Scan(
		&b.ID,
		&b.CompanyID,
		&b.Year,
		&b.Month,
		&b.InitialAmount,
		&b.CurrentAmount,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("budget", PeriodKey(companyID, year, month))
	}
	if err != nil {
		return nil, database.Wrap(err, "failed to get budget")
	}
	return b, nil
}

// Create inserts a budget for a period that has none yet.
func (r *BudgetRepository) Create(ctx context.Context, b *Budget) error {
	query := `
		INSERT INTO budgets (id, company_id, year, month, initial_amount, current_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		b.ID,
		b.CompanyID,
		b.Year,
		b.Month,
		b.InitialAmount,
		b.CurrentAmount,
	).Scan(&b.CreatedAt, &b.UpdatedAt)

	if database.IsUniqueViolation(err, budgetPeriodConstraint) {
		return errors.Conflict(fmt.Sprintf("budget for %s already exists", PeriodKey(b.CompanyID, b.Year, b.Month)))
	}
	if err != nil {
		return database.Wrap(err, "failed to create budget")
	}
	return nil
}

// UpdateAmounts overwrites both amounts. Administrative path; writes no ledger row.
func (r *BudgetRepository) UpdateAmounts(ctx context.Context, b *Budget) error {
	query := `
		UPDATE budgets
		SET initial_amount = $2,
		    current_amount = $3,
		    updated_at     = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, b.ID, b.InitialAmount, b.CurrentAmount).Scan(&b.UpdatedAt)
	if err == pgx.ErrNoRows {
		return errors.NotFound("budget", b.ID)
	}
	if err != nil {
		return database.Wrap(err, "failed to update budget")
	}
	return nil
}

// UpdateCurrentAmount sets the remaining amount after a ledger movement.
func (r *BudgetRepository) UpdateCurrentAmount(ctx context.Context, id string, currentAmount int64) error {
	query := `
		UPDATE budgets
		SET current_amount = $2,
		    updated_at     = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, currentAmount)
	if err != nil {
		return database.Wrap(err, "failed to update budget amount")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("budget", id)
	}
	return nil
}

// PeriodKey renders a budget period for messages, e.g. "c-1/2026-10".
func PeriodKey(companyID string, year, month int) string {
	return fmt.Sprintf("%s/%04d-%02d", companyID, year, month)
}
