package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

func TestResolvePrices(t *testing.T) {
	f := newFixture(t)
	lookup := NewPriceLookup(f.store.Products())

	prices, err := lookup.ResolvePrices(context.Background(), []string{chipsID, juiceID, chipsID})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{chipsID: 10000, juiceID: 30000}, prices)
}

func TestResolvePrices_NamesEveryMissingProduct(t *testing.T) {
	f := newFixture(t)
	lookup := NewPriceLookup(f.store.Products())

	prices, err := lookup.ResolvePrices(context.Background(), []string{"p-zzz", chipsID, "p-aaa"})
	require.Error(t, err)
	assert.Nil(t, prices)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	assert.Contains(t, err.Error(), "products not found: p-aaa, p-zzz")
}
