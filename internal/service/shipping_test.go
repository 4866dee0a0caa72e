package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

func TestComputeShippingFee(t *testing.T) {
	addr := func(zone repository.FeeZone) *repository.Address {
		return &repository.Address{Zipcode: "00000", Line1: "x", FeeZone: zone}
	}

	tests := []struct {
		name       string
		addr       *repository.Address
		subtotal   int64
		wantFee    int64
		wantMethod string
	}{
		{"isolated pays surcharge even above threshold", addr(repository.FeeZoneIsolated), 200000, 5000, ShippingMethodIsolatedArea},
		{"remote island pays surcharge on empty order", addr(repository.FeeZoneRemoteIsland), 0, 5000, ShippingMethodIsolatedArea},
		{"standard below threshold", addr(repository.FeeZoneStandard), 49999, 3000, ShippingMethodStandard},
		{"standard at threshold ships free", addr(repository.FeeZoneStandard), 50000, 0, ShippingMethodFree},
		{"standard zero subtotal", addr(repository.FeeZoneStandard), 0, 3000, ShippingMethodStandard},
		{"unset zone treated as standard", addr(""), 60000, 0, ShippingMethodFree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := ComputeShippingFee(tt.addr, tt.subtotal)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFee, quote.Fee)
			assert.Equal(t, tt.wantMethod, quote.Method)
		})
	}
}

func TestComputeShippingFee_InvalidInput(t *testing.T) {
	_, err := ComputeShippingFee(nil, 1000)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	_, err = ComputeShippingFee(&repository.Address{FeeZone: "MOON"}, 1000)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	_, err = ComputeShippingFee(&repository.Address{FeeZone: repository.FeeZoneStandard}, -1)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
}
