package models

import "time"

const (
	CouponKindFlat    = "flat"
	CouponKindPercent = "percent"
)

// Coupon is a discount code.
type Coupon struct {
	ID             int64      `json:"id"`
	Code           string     `json:"code"`
	Kind           string     `json:"kind"`
	Value          float64    `json:"value"`
	MaxDiscount    *float64   `json:"maxDiscount,omitempty"`
	MinOrderAmount float64    `json:"minOrderAmount"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	IsActive       bool       `json:"isActive"`
	UsageLimit     *int       `json:"usageLimit,omitempty"`
	UsedCount      int        `json:"usedCount"`
}

// VerifyCouponRequest is the body of POST /api/coupons/verify.
type VerifyCouponRequest struct {
	Code        string  `json:"code" validate:"required,max=32"`
	Subtotal    float64 `json:"subtotal" validate:"gte=0"`
	DeliveryFee float64 `json:"deliveryFee" validate:"gte=0"`
}

// VerifyCouponResponse is the reply of POST /api/coupons/verify.
type VerifyCouponResponse struct {
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discountAmount"`
	Message        string  `json:"message,omitempty"`
}
