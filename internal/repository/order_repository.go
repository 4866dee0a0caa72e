package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pesio-ai/be-procurement-settlement/pkg/database"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

const orderRequestLinkConstraint = "orders_order_request_id_key"

// OrderRepository handles order data operations
type OrderRepository struct {
	db *database.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *database.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `
	id, order_number, company_id, status, subtotal, shipping_fee, total_amount,
	shipping_method, order_request_id, created_by_id, updated_by_id, requested_by_id,
	shipped_at, delivered_at, created_at, updated_at
`

// Create inserts an order with its items. When ctx carries a transaction the
// inserts join it.
func (r *OrderRepository) Create(ctx context.Context, order *Order) error {
	return r.db.InTransaction(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO orders (id, order_number, company_id, status, subtotal, shipping_fee,
			                    total_amount, shipping_method, order_request_id,
			                    created_by_id, updated_by_id, requested_by_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING created_at, updated_at
		`

		err := r.db.QueryRow(ctx, query,
			order.ID,
			order.OrderNumber,
			order.CompanyID,
			order.Status,
			order.Subtotal,
			order.ShippingFee,
			order.TotalAmount,
			order.ShippingMethod,
			order.OrderRequestID,
			order.CreatedByID,
			order.UpdatedByID,
			order.RequestedByID,
		).Scan(&order.CreatedAt, &order.UpdatedAt)

		if database.IsUniqueViolation(err, orderRequestLinkConstraint) {
			return errors.Conflict("order request has already been settled")
		}
		if err != nil {
			return database.Wrap(err, "failed to create order")
		}

		for _, item := range order.Items {
			item.OrderID = order.ID
			itemQuery := `
				INSERT INTO order_items (id, order_id, product_id, quantity, price)
				VALUES ($1, $2, $3, $4, $5)
			`
			if _, err := r.db.Exec(ctx, itemQuery,
				item.ID,
				item.OrderID,
				item.ProductID,
				item.Quantity,
				item.Price,
			); err != nil {
				return database.Wrap(err, "failed to create order item")
			}
		}

		return nil
	})
}

// GetByID retrieves an order by ID with all items
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("order", id)
	}
	if err != nil {
		return nil, database.Wrap(err, "failed to get order")
	}

	items, err := r.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// GetItems retrieves the items of an order with product names
func (r *OrderRepository) GetItems(ctx context.Context, orderID string) ([]*OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, ''), oi.quantity, oi.price
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, database.Wrap(err, "failed to get order items")
	}
	defer rows.Close()

	items := make([]*OrderItem, 0)
	for rows.Next() {
		item := &OrderItem{}
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.Price,
		); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan order item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Wrap(err, "failed to read order items")
	}

	return items, nil
}

// ListByCompany retrieves orders newest-first with optional status filter and pagination
func (r *OrderRepository) ListByCompany(ctx context.Context, companyID string, status *OrderStatus, limit, offset int) ([]*Order, int64, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE company_id = $1`
	countQuery := `SELECT COUNT(*) FROM orders WHERE company_id = $1`

	args := []interface{}{companyID}
	argCount := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		countQuery += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, *status)
		argCount++
	}

	query += " ORDER BY created_at DESC, order_number DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)

	queryArgs := append(args, limit, offset)

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, database.Wrap(err, "failed to count orders")
	}

	rows, err := r.db.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, database.Wrap(err, "failed to list orders")
	}
	defer rows.Close()

	orders := make([]*Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan order")
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, database.Wrap(err, "failed to read orders")
	}

	return orders, total, nil
}

// UpdateFulfillment persists a status transition and its timestamps
func (r *OrderRepository) UpdateFulfillment(ctx context.Context, order *Order) error {
	query := `
		UPDATE orders
		SET status        = $2,
		    shipped_at    = $3,
		    delivered_at  = $4,
		    updated_by_id = $5,
		    updated_at    = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		order.ID,
		order.Status,
		order.ShippedAt,
		order.DeliveredAt,
		order.UpdatedByID,
	).Scan(&order.UpdatedAt)

	if err == pgx.ErrNoRows {
		return errors.NotFound("order", order.ID)
	}
	if err != nil {
		return database.Wrap(err, "failed to update order status")
	}

	return nil
}

// ExistsForRequest reports whether an order already settles the given request
func (r *OrderRepository) ExistsForRequest(ctx context.Context, orderRequestID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE order_request_id = $1)`,
		orderRequestID,
	).Scan(&exists)
	if err != nil {
		return false, database.Wrap(err, "failed to check order request link")
	}
	return exists, nil
}

// ── scan helpers ──────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CompanyID,
		&o.Status,
		&o.Subtotal,
		&o.ShippingFee,
		&o.TotalAmount,
		&o.ShippingMethod,
		&o.OrderRequestID,
		&o.CreatedByID,
		&o.UpdatedByID,
		&o.RequestedByID,
		&o.ShippedAt,
		&o.DeliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}
