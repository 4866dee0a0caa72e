package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/pesio-ai/be-procurement-settlement/pkg/database"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

// LedgerRepository appends and reads immutable budget ledger entries.
type LedgerRepository struct {
	db *database.DB
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append inserts one entry. The table rejects UPDATE and DELETE through a
// trigger so this is the only mutation operation exposed.
func (r *LedgerRepository) Append(ctx context.Context, entry *LedgerEntry) error {
	query := `
		INSERT INTO budget_ledger
		    (id, budget_id, type, amount, before_amount, after_amount,
		     description, reference_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6,
		        $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		entry.ID,
		entry.BudgetID,
		entry.Type,
		entry.Amount,
		entry.BeforeAmount,
		entry.AfterAmount,
		entry.Description,
		entry.ReferenceID,
		entry.CreatedBy,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return database.Wrap(err, "failed to append ledger entry")
	}
	return nil
}

// ListByBudget returns the ledger of a budget ordered oldest-first.
func (r *LedgerRepository) ListByBudget(ctx context.Context, budgetID string) ([]*LedgerEntry, error) {
	query := `
		SELECT id, budget_id, type, amount, before_amount, after_amount,
		       description, reference_id, created_by, created_at
		FROM budget_ledger
		WHERE budget_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, budgetID)
	if err != nil {
		return nil, database.Wrap(err, "failed to get ledger entries")
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// ── scan helpers ──────────────────────────────────────────────────────────────

func (r *LedgerRepository) scanRows(rows pgx.Rows) ([]*LedgerEntry, error) {
	entries := make([]*LedgerEntry, 0)
	for rows.Next() {
		entry := &LedgerEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.BudgetID,
			&entry.Type,
			&entry.Amount,
			&entry.BeforeAmount,
			&entry.AfterAmount,
			&entry.Description,
			&entry.ReferenceID,
			&entry.CreatedBy,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan ledger entry")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Wrap(err, "failed to read ledger entries")
	}
	return entries, nil
}
