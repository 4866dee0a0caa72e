package service

import (
	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

// Shipping fee schedule.
const (
	IsolatedAreaFee       int64 = 5000
	StandardShippingFee   int64 = 3000
	FreeShippingThreshold int64 = 50000
)

// Shipping methods recorded on orders.
const (
	ShippingMethodIsolatedArea = "ISOLATED_AREA"
	ShippingMethodStandard     = "STANDARD"
	ShippingMethodFree         = "FREE"
	// ShippingMethodUnresolved marks an order settled with a zero fee because
	// the fee could not be computed.
	ShippingMethodUnresolved = "UNRESOLVED"
)

// ShippingQuote is the fee charged for one order.
type ShippingQuote struct {
	Fee    int64
	Method string
}

// ComputeShippingFee prices delivery to addr for an order of subtotal.
// Isolated and remote-island zones pay a flat surcharge whatever the
// subtotal; elsewhere orders at or above the threshold ship free.
func ComputeShippingFee(addr *repository.Address, subtotal int64) (ShippingQuote, error) {
	if addr == nil {
		return ShippingQuote{}, errors.InvalidInput("address", "company has no registered shipping address")
	}
	if subtotal < 0 {
		return ShippingQuote{}, errors.InvalidInput("subtotal", "subtotal cannot be negative")
	}

	switch addr.FeeZone {
	case repository.FeeZoneIsolated, repository.FeeZoneRemoteIsland:
		return ShippingQuote{Fee: IsolatedAreaFee, Method: ShippingMethodIsolatedArea}, nil
	case repository.FeeZoneStandard, "":
	default:
		return ShippingQuote{}, errors.InvalidInput("fee_zone", "unknown fee zone "+string(addr.FeeZone))
	}

	if subtotal < FreeShippingThreshold {
		return ShippingQuote{Fee: StandardShippingFee, Method: ShippingMethodStandard}, nil
	}
	return ShippingQuote{Fee: 0, Method: ShippingMethodFree}, nil
}
