// Package coupons verifies discount codes and counts their redemptions.
package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homechef-delivery/internal/models"
	"homechef-delivery/internal/modules/pricing"

	"github.com/shopspring/decimal"
)

type ServiceInterface interface {
	Verify(ctx context.Context, code string, subtotal, deliveryFee float64) (*models.VerifyCouponResponse, error)
}

type Service struct {
	repo RepositoryInterface
	now  func() time.Time
}

func NewService(repo RepositoryInterface) ServiceInterface {
	return &Service{repo: repo, now: time.Now}
}

// Verify returns the discount the coupon grants on an order. Rejections wrap
// ErrInvalidCoupon with a reason the customer can read.
func (s *Service) Verify(ctx context.Context, code string, subtotal, deliveryFee float64) (*models.VerifyCouponResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCoupon
		}
		return nil, fmt.Errorf("service.Verify: %w", err)
	}

	if err := checkUsable(coupon, subtotal, s.now()); err != nil {
		return nil, err
	}

	discount := pricing.CapDiscount(Discount(coupon, subtotal), subtotal, deliveryFee)
	return &models.VerifyCouponResponse{
		Code:           coupon.Code,
		DiscountAmount: discount,
		Message:        fmt.Sprintf("Coupon applied, you save ₹%s", decimal.NewFromFloat(discount).StringFixed(0)),
	}, nil
}

func checkUsable(c *models.Coupon, subtotal float64, now time.Time) error {
	switch {
	case !c.IsActive:
		return models.ErrInvalidCoupon
	case c.ExpiresAt != nil && !now.Before(*c.ExpiresAt):
		return fmt.Errorf("%w: this coupon has expired", models.ErrInvalidCoupon)
	case c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit:
		return fmt.Errorf("%w: this coupon has been fully redeemed", models.ErrInvalidCoupon)
	case subtotal < c.MinOrderAmount:
		return fmt.Errorf("%w: add items worth ₹%.0f more to use this coupon", models.ErrInvalidCoupon, c.MinOrderAmount-subtotal)
	}
	return nil
}

// Discount is the uncapped amount a coupon takes off the subtotal. Percent
// coupons are rounded down to a whole rupee and limited by MaxDiscount.
func Discount(c *models.Coupon, subtotal float64) float64 {
	var d decimal.Decimal
	switch c.Kind {
	case models.CouponKindPercent:
		d = decimal.NewFromFloat(subtotal).Mul(decimal.NewFromFloat(c.Value)).Div(decimal.NewFromInt(100)).Floor()
		if c.MaxDiscount != nil {
			d = decimal.Min(d, decimal.NewFromFloat(*c.MaxDiscount))
		}
	default:
		d = decimal.NewFromFloat(c.Value)
	}
	if d.IsNegative() {
		return 0
	}
	return d.InexactFloat64()
}
