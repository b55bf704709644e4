// Package pricing computes checkout totals. The checkout session and order
// placement both use it so the client-facing total and the persisted total agree.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Input is everything that contributes to an order total.
type Input struct {
	Subtotal       float64
	DeliveryFee    float64
	IsFreeDelivery bool
	CouponDiscount float64
	// Bonus is the eligible referral bonus, applied when UseBonus is set.
	Bonus    float64
	UseBonus bool
	// WalletBalance is applied, capped, when UseWallet is set.
	WalletBalance          float64
	UseWallet              bool
	WalletMaxUsagePerOrder float64
	WalletMinOrderAmount   float64
}

// Totals is the computed breakdown.
type Totals struct {
	Subtotal        float64 `json:"subtotal"`
	DeliveryFee     float64 `json:"deliveryFee"`
	IsFreeDelivery  bool    `json:"isFreeDelivery"`
	Discount        float64 `json:"discount"`
	BonusUsed       float64 `json:"bonusUsed"`
	WalletUsed      float64 `json:"walletUsed"`
	WalletAvailable bool    `json:"walletAvailable"`
	Total           float64 `json:"total"`
}

// CapDiscount limits a coupon discount to the payable amount (subtotal plus fee).
func CapDiscount(discount, subtotal, deliveryFee float64) float64 {
	d := decimal.NewFromFloat(discount)
	ceiling := decimal.NewFromFloat(subtotal).Add(decimal.NewFromFloat(deliveryFee))
	if d.IsNegative() {
		return 0
	}
	return decimal.Min(d, ceiling).InexactFloat64()
}

// WalletUsage is min(maxUsage, balance, remaining), never negative.
func WalletUsage(maxUsagePerOrder, balance, remaining float64) float64 {
	u := decimal.Min(
		decimal.NewFromFloat(maxUsagePerOrder),
		decimal.NewFromFloat(balance),
		decimal.NewFromFloat(remaining),
	)
	if u.IsNegative() {
		return 0
	}
	return u.InexactFloat64()
}

// Compute returns
//
//	total = max(0, subtotal + fee(unless free) − discount − bonus − wallet)
//
// The coupon discount is capped at subtotal+fee; bonus and wallet only consume
// what is still payable; wallet use is disabled below the minimum order amount.
func Compute(in Input) Totals {
	fee := decimal.Zero
	if !in.IsFreeDelivery {
		fee = decimal.NewFromFloat(in.DeliveryFee)
	}
	subtotal := decimal.NewFromFloat(in.Subtotal)
	discount := decimal.NewFromFloat(CapDiscount(in.CouponDiscount, in.Subtotal, fee.InexactFloat64()))

	remaining := subtotal.Add(fee).Sub(discount)

	bonus := decimal.Zero
	if in.UseBonus && in.Bonus > 0 {
		bonus = decimal.Min(decimal.NewFromFloat(in.Bonus), decimal.Max(remaining, decimal.Zero))
		remaining = remaining.Sub(bonus)
	}

	walletAvailable := in.Subtotal >= in.WalletMinOrderAmount && in.WalletBalance > 0
	wallet := decimal.Zero
	if in.UseWallet && walletAvailable {
		wallet = decimal.NewFromFloat(WalletUsage(in.WalletMaxUsagePerOrder, in.WalletBalance, remaining.InexactFloat64()))
		remaining = remaining.Sub(wallet)
	}

	total := decimal.Max(remaining, decimal.Zero)

	return Totals{
		Subtotal:        in.Subtotal,
		DeliveryFee:     fee.InexactFloat64(),
		IsFreeDelivery:  in.IsFreeDelivery,
		Discount:        discount.InexactFloat64(),
		BonusUsed:       bonus.InexactFloat64(),
		WalletUsed:      wallet.InexactFloat64(),
		WalletAvailable: walletAvailable,
		Total:           total.InexactFloat64(),
	}
}
