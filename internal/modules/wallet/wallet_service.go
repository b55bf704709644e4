// Package wallet exposes stored credit: the wallet balance and the referral bonus.
package wallet

import (
	"context"
	"fmt"

	"homechef-delivery/internal/models"
)

// UserReader is the slice of the users repository the wallet needs.
type UserReader interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

// Policy holds the configured wallet and bonus limits.
type Policy struct {
	WalletMaxUsagePerOrder float64
	WalletMinOrderAmount   float64
	BonusMinOrderAmount    float64
}

type ServiceInterface interface {
	Summary(ctx context.Context, userID string) (*models.WalletSummary, error)
	CheckBonusEligibility(ctx context.Context, userID string, orderTotal float64) (*models.BonusEligibility, error)
	Policy() Policy
}

type Service struct {
	users  UserReader
	policy Policy
}

func NewService(users UserReader, policy Policy) ServiceInterface {
	return &Service{users: users, policy: policy}
}

func (s *Service) Policy() Policy { return s.policy }

func (s *Service) Summary(ctx context.Context, userID string) (*models.WalletSummary, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Summary: %w", err)
	}
	return &models.WalletSummary{
		WalletBalance:    user.WalletBalance,
		BonusBalance:     user.BonusBalance,
		MaxUsagePerOrder: s.policy.WalletMaxUsagePerOrder,
		MinOrderAmount:   s.policy.WalletMinOrderAmount,
	}, nil
}

func (s *Service) CheckBonusEligibility(ctx context.Context, userID string, orderTotal float64) (*models.BonusEligibility, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.CheckBonusEligibility: %w", err)
	}
	return Eligibility(user.BonusBalance, orderTotal, s.policy.BonusMinOrderAmount), nil
}

// Eligibility applies the bonus rule: a positive balance and an order total at
// or above the minimum.
func Eligibility(bonusBalance, orderTotal, minOrderAmount float64) *models.BonusEligibility {
	res := &models.BonusEligibility{MinOrderAmount: minOrderAmount}
	switch {
	case bonusBalance <= 0:
		res.Reason = "No referral bonus available"
	case orderTotal < minOrderAmount:
		res.Reason = fmt.Sprintf("Order total must be at least ₹%.0f to use your referral bonus", minOrderAmount)
	default:
		res.Eligible = true
		res.Bonus = bonusBalance
	}
	return res
}
