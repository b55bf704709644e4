package models

import "time"

// User is a customer account. Wallet and bonus balances are stored credit.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	Role          string    `json:"role"`
	PasswordHash  string    `json:"-"`
	ReferralCode  string    `json:"referralCode"`
	ReferredBy    *string   `json:"referredBy,omitempty"`
	WalletBalance float64   `json:"walletBalance"`
	BonusBalance  float64   `json:"bonusBalance"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// WalletSummary is the reply of GET /api/user/wallet.
type WalletSummary struct {
	WalletBalance    float64 `json:"walletBalance"`
	BonusBalance     float64 `json:"bonusBalance"`
	MaxUsagePerOrder float64 `json:"maxUsagePerOrder"`
	MinOrderAmount   float64 `json:"minOrderAmount"`
}

// BonusEligibilityRequest is the body of POST /api/user/check-bonus-eligibility.
type BonusEligibilityRequest struct {
	OrderTotal float64 `json:"orderTotal" validate:"gte=0"`
}

// BonusEligibility tells whether the referral bonus may be applied to an order.
type BonusEligibility struct {
	Eligible       bool    `json:"eligible"`
	Bonus          float64 `json:"bonus"`
	MinOrderAmount float64 `json:"minOrderAmount"`
	Reason         string  `json:"reason,omitempty"`
}
