package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
	"github.com/pesio-ai/be-procurement-settlement/pkg/logger"
	"github.com/pesio-ai/be-procurement-settlement/pkg/metrics"
)

// BudgetCeiling is the largest value either budget amount may hold.
const BudgetCeiling int64 = 500_000_000

// BudgetOptions tunes the budget ledger.
type BudgetOptions struct {
	// MaxAttempts bounds transaction re-runs after a storage conflict.
	MaxAttempts int
	// Location decides which calendar month "current" refers to.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

// BudgetService owns monthly company budgets and their append-only ledger.
type BudgetService struct {
	users   UserRepository
	budgets BudgetRepository
	ledger  LedgerRepository
	retry   retrier
	loc     *time.Location
	now     func() time.Time
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewBudgetService creates a new budget service
func NewBudgetService(
	stores Stores,
	opts BudgetOptions,
	m *metrics.Metrics,
	log *logger.Logger,
) *BudgetService {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BudgetService{
		users:   stores.Users,
		budgets: stores.Budgets,
		ledger:  stores.Ledger,
		retry:   retrier{tx: stores.Tx, maxAttempts: opts.MaxAttempts, metrics: m, log: log},
		loc:     opts.Location,
		now:     opts.Now,
		metrics: m,
		log:     log,
	}
}

// currentPeriod returns the (year, month) budgets are charged against.
func (s *BudgetService) currentPeriod() (int, int) {
	t := s.now().In(s.loc)
	return t.Year(), int(t.Month())
}

// ── Deduct ────────────────────────────────────────────────────────────────────

// DeductBudget withdraws amount from the current-month budget of the user's
// company and returns the remaining amount.
func (s *BudgetService) DeductBudget(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, errors.InvalidInput("amount", "amount must be positive")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	var entry *repository.LedgerEntry
	err = s.retry.run(ctx, "budget deduction", func(ctx context.Context) error {
		var err error
		entry, err = s.withdraw(ctx, user.CompanyID, amount, withdrawal{
			createdBy:   userID,
			description: "Manual budget deduction",
		})
		return err
	})
	s.observeDeduction(err)
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Str("company_id", user.CompanyID).
		Str("budget_id", entry.BudgetID).
		Int64("amount", amount).
		Int64("remaining", entry.AfterAmount).
		Msg("Budget deducted")

	return entry.AfterAmount, nil
}

type withdrawal struct {
	createdBy   string
	description string
	referenceID *string
}

// withdraw must run inside a transaction. It locks the budget row of the
// current period, checks funds, lowers currentAmount and appends the paired
// ledger entry.
func (s *BudgetService) withdraw(ctx context.Context, companyID string, amount int64, w withdrawal) (*repository.LedgerEntry, error) {
	if amount < 0 {
		return nil, errors.InvalidInput("amount", "withdrawal amount cannot be negative")
	}
	year, month := s.currentPeriod()

	budget, err := s.budgets.GetByPeriodForUpdate(ctx, companyID, year, month)
	if err != nil {
		return nil, err
	}

	if budget.CurrentAmount < amount {
		return nil, errors.Forbidden(fmt.Sprintf(
			"insufficient budget for %s: remaining %d, required %d",
			repository.PeriodKey(companyID, year, month), budget.CurrentAmount, amount,
		))
	}

	after := budget.CurrentAmount - amount
	if err := s.budgets.UpdateCurrentAmount(ctx, budget.ID, after); err != nil {
		return nil, err
	}

	entry := &repository.LedgerEntry{
		ID:           uuid.NewString(),
		BudgetID:     budget.ID,
		Type:         repository.LedgerEntryWithdrawal,
		Amount:       -amount,
		BeforeAmount: budget.CurrentAmount,
		AfterAmount:  after,
		Description:  w.description,
		ReferenceID:  w.referenceID,
		CreatedBy:    w.createdBy,
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *BudgetService) observeDeduction(err error) {
	result := metrics.DeductionOK
	switch {
	case err == nil:
	case errors.IsCode(err, errors.ErrCodeForbidden):
		result = metrics.DeductionInsufficient
	case errors.IsCode(err, errors.ErrCodeNotFound):
		result = metrics.DeductionNotFound
	case errors.IsCode(err, errors.ErrCodeConflict):
		result = metrics.DeductionConflict
	default:
		result = metrics.DeductionError
	}
	s.metrics.Deductions.WithLabelValues(result).Inc()
}

// ── Reads ─────────────────────────────────────────────────────────────────────

// EstimateRemainingBudget projects what would remain after spending
// expectedAmount. The result is negative when the budget would not cover it.
func (s *BudgetService) EstimateRemainingBudget(ctx context.Context, userID string, expectedAmount int64) (int64, error) {
	if expectedAmount < 0 {
		return 0, errors.InvalidInput("expected_amount", "expected amount cannot be negative")
	}

	budget, err := s.GetCurrentBudget(ctx, userID)
	if err != nil {
		return 0, err
	}
	return budget.CurrentAmount - expectedAmount, nil
}

// GetCurrentBudget returns the current-month budget of the user's company.
func (s *BudgetService) GetCurrentBudget(ctx context.Context, userID string) (*repository.Budget, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	year, month := s.currentPeriod()
	return s.budgets.GetByPeriod(ctx, user.CompanyID, year, month)
}

// ListLedgerEntries returns the ledger of one period of the user's company,
// oldest first.
func (s *BudgetService) ListLedgerEntries(ctx context.Context, userID string, year, month int) ([]*repository.LedgerEntry, error) {
	if month < 1 || month > 12 {
		return nil, errors.InvalidInput("month", "month must be between 1 and 12")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	budget, err := s.budgets.GetByPeriod(ctx, user.CompanyID, year, month)
	if err != nil {
		return nil, err
	}
	return s.ledger.ListByBudget(ctx, budget.ID)
}

// ── Update ────────────────────────────────────────────────────────────────────

// UpdateBudgetRequest sets both amounts of one budget period.
type UpdateBudgetRequest struct {
	CompanyID     string
	Year          int
	Month         int
	CurrentAmount int64
	InitialAmount int64
	UpdatedBy     string
}

// UpdateBudget creates the period's budget when it does not exist yet and
// otherwise overwrites both amounts. It never writes ledger entries.
func (s *BudgetService) UpdateBudget(ctx context.Context, req *UpdateBudgetRequest) (*repository.Budget, error) {
	if err := validateBudgetAmount("current_amount", req.CurrentAmount); err != nil {
		return nil, err
	}
	if err := validateBudgetAmount("initial_amount", req.InitialAmount); err != nil {
		return nil, err
	}
	if req.Month < 1 || req.Month > 12 {
		return nil, errors.InvalidInput("month", "month must be between 1 and 12")
	}
	if req.Year < 1 {
		return nil, errors.InvalidInput("year", "year must be positive")
	}

	if _, err := s.users.GetCompany(ctx, req.CompanyID); err != nil {
		return nil, err
	}

	var (
		budget  *repository.Budget
		created bool
	)
	err := s.retry.run(ctx, "budget update", func(ctx context.Context) error {
		existing, err := s.budgets.GetByPeriodForUpdate(ctx, req.CompanyID, req.Year, req.Month)
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			budget = &repository.Budget{
				ID:            uuid.NewString(),
				CompanyID:     req.CompanyID,
				Year:          req.Year,
				Month:         req.Month,
				InitialAmount: req.InitialAmount,
				CurrentAmount: req.CurrentAmount,
			}
			created = true
			err := s.budgets.Create(ctx, budget)
			if errors.IsCode(err, errors.ErrCodeConflict) {
				// another admin created the period concurrently
				return errors.Retryable(err, "budget period created concurrently")
			}
			return err
		}
		if err != nil {
			return err
		}

		existing.InitialAmount = req.InitialAmount
		existing.CurrentAmount = req.CurrentAmount
		budget, created = existing, false
		return s.budgets.UpdateAmounts(ctx, existing)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("company_id", req.CompanyID).
		Str("budget_id", budget.ID).
		Str("period", repository.PeriodKey(req.CompanyID, req.Year, req.Month)).
		Int64("initial_amount", budget.InitialAmount).
		Int64("current_amount", budget.CurrentAmount).
		Bool("created", created).
		Str("updated_by", req.UpdatedBy).
		Msg("Budget updated")

	return budget, nil
}

func validateBudgetAmount(field string, amount int64) error {
	if amount < 0 {
		return errors.InvalidInput(field, fmt.Sprintf("%s cannot be negative", field))
	}
	if amount > BudgetCeiling {
		return errors.InvalidInput(field, fmt.Sprintf("%s cannot exceed %d", field, BudgetCeiling))
	}
	return nil
}
