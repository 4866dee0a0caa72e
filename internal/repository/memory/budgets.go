package memory

import (
	"context"
	"fmt"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

const budgetCeiling = 500_000_000

// BudgetRepository is the in-memory counterpart of repository.BudgetRepository.
type BudgetRepository struct{ s *Store }

func (s *Store) Budgets() *BudgetRepository { return &BudgetRepository{s: s} }

func (r *BudgetRepository) GetByPeriod(ctx context.Context, companyID string, year, month int) (*repository.Budget, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.byPeriod(companyID, year, month)
}

func (r *BudgetRepository) GetByPeriodForUpdate(ctx context.Context, companyID string, year, month int) (*repository.Budget, error) {
	if err := r.s.lockRow(ctx, "budget/"+repository.PeriodKey(companyID, year, month)); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.byPeriod(companyID, year, month)
}

func (r *BudgetRepository) byPeriod(companyID string, year, month int) (*repository.Budget, error) {
	key := repository.PeriodKey(companyID, year, month)
	id, ok := r.s.budgetByPeriod[key]
	if !ok {
		return nil, errors.NotFound("budget", key)
	}
	b := *r.s.budgets[id]
	return &b, nil
}

func (r *BudgetRepository) Create(ctx context.Context, b *repository.Budget) error {
	if err := checkAmounts(b.InitialAmount, b.CurrentAmount); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := repository.PeriodKey(b.CompanyID, b.Year, b.Month)
	if _, exists := r.s.budgetByPeriod[key]; exists {
		return errors.Conflict(fmt.Sprintf("budget for %s already exists", key))
	}

	now := r.s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	stored := *b
	r.s.budgets[b.ID] = &stored
	r.s.budgetByPeriod[key] = b.ID

	r.s.onRollback(ctx, func() {
		delete(r.s.budgets, b.ID)
		delete(r.s.budgetByPeriod, key)
	})
	return nil
}

func (r *BudgetRepository) UpdateAmounts(ctx context.Context, b *repository.Budget) error {
	if err := checkAmounts(b.InitialAmount, b.CurrentAmount); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.budgets[b.ID]
	if !ok {
		return errors.NotFound("budget", b.ID)
	}
	prev := *stored

	stored.InitialAmount = b.InitialAmount
	stored.CurrentAmount = b.CurrentAmount
	stored.UpdatedAt = r.s.now()
	b.UpdatedAt = stored.UpdatedAt

	r.s.onRollback(ctx, func() { *stored = prev })
	return nil
}

func (r *BudgetRepository) UpdateCurrentAmount(ctx context.Context, id string, currentAmount int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.budgets[id]
	if !ok {
		return errors.NotFound("budget", id)
	}
	if err := checkAmounts(stored.InitialAmount, currentAmount); err != nil {
		return err
	}
	prev := *stored

	stored.CurrentAmount = currentAmount
	stored.UpdatedAt = r.s.now()

	r.s.onRollback(ctx, func() { *stored = prev })
	return nil
}

// checkAmounts mirrors the CHECK constraints on the budgets table.
func checkAmounts(amounts ...int64) error {
	for _, a := range amounts {
		if a < 0 || a > budgetCeiling {
			return errors.New(errors.ErrCodeInternal, fmt.Sprintf("budget amount %d violates check constraint", a))
		}
	}
	return nil
}

// ── Ledger ────────────────────────────────────────────────────────────────────

// LedgerRepository is append-only, like the budget_ledger table.
type LedgerRepository struct{ s *Store }

func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{s: s} }

func (r *LedgerRepository) Append(ctx context.Context, entry *repository.LedgerEntry) error {
	if entry.AfterAmount != entry.BeforeAmount+entry.Amount {
		return errors.New(errors.ErrCodeInternal, "ledger entry violates balance check")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.budgets[entry.BudgetID]; !ok {
		return errors.New(errors.ErrCodeInternal, fmt.Sprintf("ledger entry references unknown budget %s", entry.BudgetID))
	}

	entry.CreatedAt = r.s.now()
	stored := *entry
	r.s.ledger = append(r.s.ledger, &stored)

	r.s.onRollback(ctx, func() {
		for i, e := range r.s.ledger {
			if e.ID == stored.ID {
				r.s.ledger = append(r.s.ledger[:i], r.s.ledger[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (r *LedgerRepository) ListByBudget(ctx context.Context, budgetID string) ([]*repository.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entries := make([]*repository.LedgerEntry, 0)
	for _, e := range r.s.ledger {
		if e.BudgetID == budgetID {
			cp := *e
			entries = append(entries, &cp)
		}
	}
	return entries, nil
}
