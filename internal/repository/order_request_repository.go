package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pesio-ai/be-procurement-settlement/pkg/database"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

// OrderRequestRepository handles order requests and their items
type OrderRequestRepository struct {
	db *database.DB
}

// NewOrderRequestRepository creates a new order request repository
func NewOrderRequestRepository(db *database.DB) *OrderRequestRepository {
	return &OrderRequestRepository{db: db}
}

const orderRequestColumns = `
	id, company_id, requester_id, status, total_amount, resolver_id, resolved_at,
	notes, created_at, updated_at
`

// Create inserts a PENDING request with its items
func (r *OrderRequestRepository) Create(ctx context.Context, req *OrderRequest) error {
	return r.db.InTransaction(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO order_requests (id, company_id, requester_id, status, total_amount, notes)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at
		`

		err := r.db.QueryRow(ctx, query,
			req.ID,
			req.CompanyID,
			req.RequesterID,
			req.Status,
			req.TotalAmount,
			req.Notes,
		).Scan(&req.CreatedAt, &req.UpdatedAt)
		if err != nil {
			return database.Wrap(err, "failed to create order request")
		}

		for _, item := range req.Items {
			item.OrderRequestID = req.ID
			itemQuery := `
				INSERT INTO order_request_items (id, order_request_id, product_id, quantity, price, notes)
				VALUES ($1, $2, $3, $4, $5, $6)
			`
			if _, err := r.db.Exec(ctx, itemQuery,
				item.ID,
				item.OrderRequestID,
				item.ProductID,
				item.Quantity,
				item.Price,
				item.Notes,
			); err != nil {
				return database.Wrap(err, "failed to create order request item")
			}
		}

		return nil
	})
}

// GetByID retrieves a request with its items
func (r *OrderRequestRepository) GetByID(ctx context.Context, id string) (*OrderRequest, error) {
	query := `SELECT ` + orderRequestColumns + ` FROM order_requests WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetByIDForUpdate retrieves a request and locks its row until the
// surrounding transaction ends
func (r *OrderRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (*OrderRequest, error) {
	query := `SELECT ` + orderRequestColumns + ` FROM order_requests WHERE id = $1 FOR UPDATE`
	return r.get(ctx, query, id)
}

func (r *OrderRequestRepository) get(ctx context.Context, query, id string) (*OrderRequest, error) {
	req, err := scanOrderRequest(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("order request", id)
	}
	if err != nil {
		return nil, database.Wrap(err, "failed to get order request")
	}

	items, err := r.GetItems(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	req.Items = items

	return req, nil
}

// GetItems retrieves the items of a request
func (r *OrderRequestRepository) GetItems(ctx context.Context, orderRequestID string) ([]*OrderRequestItem, error) {
	query := `
		SELECT id, order_request_id, product_id, quantity, price, notes
		FROM order_request_items
		WHERE order_request_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, orderRequestID)
	if err != nil {
		return nil, database.Wrap(err, "failed to get order request items")
	}
	defer rows.Close()

	items := make([]*OrderRequestItem, 0)
	for rows.Next() {
		item := &OrderRequestItem{}
		if err := rows.Scan(
			&item.ID,
			&item.OrderRequestID,
			&item.ProductID,
			&item.Quantity,
			&item.Price,
			&item.Notes,
		); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan order request item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Wrap(err, "failed to read order request items")
	}

	return items, nil
}

// Resolve moves a PENDING request to a terminal status
func (r *OrderRequestRepository) Resolve(ctx context.Context, id string, status OrderRequestStatus, resolverID string, notes *string, at time.Time) error {
	query := `
		UPDATE order_requests
		SET status      = $2,
		    resolver_id = $3,
		    resolved_at = $4,
		    notes       = COALESCE($5, notes),
		    updated_at  = NOW()
		WHERE id = $1 AND status = 'PENDING'
	`

	tag, err := r.db.Exec(ctx, query, id, status, resolverID, at, notes)
	if err != nil {
		return database.Wrap(err, "failed to resolve order request")
	}
	if tag.RowsAffected() == 0 {
		return errors.InvalidInput("status", "order request is not pending")
	}

	return nil
}

// Delete removes a PENDING request and its items
func (r *OrderRequestRepository) Delete(ctx context.Context, id string) error {
	return r.db.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.db.Exec(ctx, `DELETE FROM order_request_items WHERE order_request_id = $1`, id); err != nil {
			return database.Wrap(err, "failed to delete order request items")
		}

		tag, err := r.db.Exec(ctx, `DELETE FROM order_requests WHERE id = $1 AND status = 'PENDING'`, id)
		if err != nil {
			return database.Wrap(err, "failed to delete order request")
		}
		if tag.RowsAffected() == 0 {
			return errors.InvalidInput("status", "only pending order requests can be deleted")
		}
		return nil
	})
}

// ListByCompany retrieves requests newest-first with optional status filter and pagination.
// Items are not loaded.
func (r *OrderRequestRepository) ListByCompany(ctx context.Context, companyID string, status *OrderRequestStatus, limit, offset int) ([]*OrderRequest, int64, error) {
	query := `SELECT ` + orderRequestColumns + ` FROM order_requests WHERE company_id = $1`
	countQuery := `SELECT COUNT(*) FROM order_requests WHERE company_id = $1`

	args := []interface{}{companyID}
	argCount := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		countQuery += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, *status)
		argCount++
	}

	query += " ORDER BY created_at DESC, id DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)

	queryArgs := append(args, limit, offset)

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, database.Wrap(err, "failed to count order requests")
	}

	rows, err := r.db.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, database.Wrap(err, "failed to list order requests")
	}
	defer rows.Close()

	reqs := make([]*OrderRequest, 0)
	for rows.Next() {
		req, err := scanOrderRequest(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan order request")
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, database.Wrap(err, "failed to read order requests")
	}

	return reqs, total, nil
}

func scanOrderRequest(row rowScanner) (*OrderRequest, error) {
	req := &OrderRequest{}
	err := row.Scan(
		&req.ID,
		&req.CompanyID,
		&req.RequesterID,
		&req.Status,
		&req.TotalAmount,
		&req.ResolverID,
		&req.ResolvedAt,
		&req.Notes,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}
