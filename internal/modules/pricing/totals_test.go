package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_CouponAndWalletWithFreeDelivery(t *testing.T) {
	got := Compute(Input{
		Subtotal:               300,
		DeliveryFee:            40,
		IsFreeDelivery:         true,
		CouponDiscount:         50,
		WalletBalance:          20,
		UseWallet:              true,
		WalletMaxUsagePerOrder: 50,
		WalletMinOrderAmount:   100,
	})

	assert.Equal(t, 0.0, got.DeliveryFee)
	assert.Equal(t, 50.0, got.Discount)
	assert.Equal(t, 20.0, got.WalletUsed)
	assert.Equal(t, 230.0, got.Total)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		in         Input
		wantTotal  float64
		wantWallet float64
		wantBonus  float64
	}{
		{
			name:      "fee charged below threshold",
			in:        Input{Subtotal: 120, DeliveryFee: 17},
			wantTotal: 137,
		},
		{
			name:      "discount capped at payable amount",
			in:        Input{Subtotal: 80, DeliveryFee: 20, CouponDiscount: 500},
			wantTotal: 0,
		},
		{
			name: "wallet capped by max usage",
			in: Input{Subtotal: 400, WalletBalance: 300, UseWallet: true,
				WalletMaxUsagePerOrder: 50, WalletMinOrderAmount: 100},
			wantTotal:  350,
			wantWallet: 50,
		},
		{
			name: "wallet disabled below minimum order",
			in: Input{Subtotal: 90, DeliveryFee: 10, WalletBalance: 300, UseWallet: true,
				WalletMaxUsagePerOrder: 50, WalletMinOrderAmount: 100},
			wantTotal: 100,
		},
		{
			name: "wallet only consumes what remains",
			in: Input{Subtotal: 150, CouponDiscount: 120, WalletBalance: 300, UseWallet: true,
				WalletMaxUsagePerOrder: 50, WalletMinOrderAmount: 100},
			wantTotal:  0,
			wantWallet: 30,
		},
		{
			name:      "bonus applied when requested",
			in:        Input{Subtotal: 200, Bonus: 50, UseBonus: true},
			wantTotal: 150,
			wantBonus: 50,
		},
		{
			name:      "bonus ignored when not requested",
			in:        Input{Subtotal: 200, Bonus: 50},
			wantTotal: 200,
		},
		{
			name: "bonus then wallet",
			in: Input{Subtotal: 200, DeliveryFee: 30, Bonus: 50, UseBonus: true,
				WalletBalance: 500, UseWallet: true, WalletMaxUsagePerOrder: 50, WalletMinOrderAmount: 100},
			wantTotal:  130,
			wantBonus:  50,
			wantWallet: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.in)
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantWallet, got.WalletUsed)
			assert.Equal(t, tt.wantBonus, got.BonusUsed)
			assert.GreaterOrEqual(t, got.Total, 0.0)
		})
	}
}

func TestCapDiscount(t *testing.T) {
	assert.Equal(t, 100.0, CapDiscount(150, 80, 20))
	assert.Equal(t, 30.0, CapDiscount(30, 80, 20))
	assert.Equal(t, 0.0, CapDiscount(-5, 80, 20))
}

func TestWalletUsage(t *testing.T) {
	assert.Equal(t, 50.0, WalletUsage(50, 300, 400))
	assert.Equal(t, 20.0, WalletUsage(50, 20, 400))
	assert.Equal(t, 10.0, WalletUsage(50, 300, 10))
	assert.Equal(t, 0.0, WalletUsage(50, 300, -10))
}
