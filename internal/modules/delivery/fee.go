package delivery

import (
	"math"

	"homechef-delivery/internal/models"

	"github.com/shopspring/decimal"
)

// FeeQuote is the delivery fee for one order.
type FeeQuote struct {
	DeliveryFee    float64 `json:"deliveryFee"`
	IsFreeDelivery bool    `json:"isFreeDelivery"`
}

// UsableDistance reports whether distance can be priced per km. Only a finite,
// positive distance qualifies; nil, NaN, infinite, zero or negative distances
// mean "no location".
func UsableDistance(distance *float64) bool {
	if distance == nil {
		return false
	}
	d := *distance
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}

// CalculateDeliveryFee prices delivery:
//   - with a location and a usable distance: ceil(distance × per-km rate)
//   - otherwise: the chef's default fee
//   - an order at or above the free-delivery threshold ships free, regardless of
//     distance.
func CalculateDeliveryFee(hasLocation bool, distance *float64, orderAmount float64, s models.DeliverySettings) FeeQuote {
	if orderAmount >= s.FreeDeliveryThreshold {
		return FeeQuote{DeliveryFee: 0, IsFreeDelivery: true}
	}

	if hasLocation && UsableDistance(distance) {
		fee := decimal.NewFromFloat(*distance).
			Mul(decimal.NewFromFloat(s.DeliveryFeePerKm)).
			Ceil()
		return FeeQuote{DeliveryFee: fee.InexactFloat64()}
	}

	return FeeQuote{DeliveryFee: s.DefaultDeliveryFee}
}
