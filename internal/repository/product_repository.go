package repository

import (
	"context"

	"github.com/pesio-ai/be-procurement-settlement/pkg/database"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

// ProductRepository reads catalogue prices.
type ProductRepository struct {
	db *database.DB
}

func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetPrices returns the current unit price of every id that exists. Missing
// ids are simply absent from the map; callers decide whether that is an error.
func (r *ProductRepository) GetPrices(ctx context.Context, ids []string) (map[string]int64, error) {
	prices := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}

	query := `
		SELECT id, price
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, database.Wrap(err, "failed to get product prices")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    string
			price int64
		)
		if err := rows.Scan(&id, &price); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan product price")
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return nil, database.Wrap(err, "failed to read product prices")
	}
	return prices, nil
}
