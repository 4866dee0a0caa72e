package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

// PriceLookup resolves live catalogue prices.
type PriceLookup struct {
	products ProductRepository
}

func NewPriceLookup(products ProductRepository) *PriceLookup {
	return &PriceLookup{products: products}
}

// ResolvePrices returns the current unit price of every distinct id. It fails
// with NOT_FOUND naming all ids that do not resolve; no partial result is
// returned.
func (p *PriceLookup) ResolvePrices(ctx context.Context, productIDs []string) (map[string]int64, error) {
	seen := make(map[string]struct{}, len(productIDs))
	distinct := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	prices, err := p.products.GetPrices(ctx, distinct)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, id := range distinct {
		if _, ok := prices[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &errors.AppError{
			Code:    errors.ErrCodeNotFound,
			Message: fmt.Sprintf("products not found: %s", strings.Join(missing, ", ")),
			Field:   "product_id",
		}
	}
	return prices, nil
}
