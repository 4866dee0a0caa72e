package repository

import (
	"context"

	"github.com/pesio-ai/be-procurement-settlement/pkg/database"
)

// CartRepository manages shopping cart rows.
type CartRepository struct {
	db *database.DB
}

func NewCartRepository(db *database.DB) *CartRepository {
	return &CartRepository{db: db}
}

// ClearForUser deletes every cart item of a user and returns how many were removed.
func (r *CartRepository) ClearForUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, database.Wrap(err, "failed to clear cart")
	}
	return tag.RowsAffected(), nil
}
