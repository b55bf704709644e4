package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homechef-delivery/internal/models"
	"homechef-delivery/internal/modules/delivery"
	"homechef-delivery/internal/modules/geocoding"
	"homechef-delivery/internal/modules/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ZoneChecker validates an address against a chef's delivery zone.
type ZoneChecker interface {
	Validate(ctx context.Context, chefID int64, q models.AddressQuery) (*models.ZoneResult, error)
}

type ChefReader interface {
	GetChef(ctx context.Context, chefID int64) (*models.Chef, error)
}

type CouponVerifier interface {
	Verify(ctx context.Context, code string, subtotal, deliveryFee float64) (*models.VerifyCouponResponse, error)
}

type BonusChecker interface {
	CheckBonusEligibility(ctx context.Context, userID string, orderTotal float64) (*models.BonusEligibility, error)
}

type WalletReader interface {
	Summary(ctx context.Context, userID string) (*models.WalletSummary, error)
}

// AccountLookup finds the account registered to a phone.
type AccountLookup interface {
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
}

// SlotChecker resolves the delivery date and slot for the cart.
type SlotChecker interface {
	Resolve(items []models.OrderItem, date, slot string, now time.Time) (time.Time, string, *models.OrderRejection)
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, callerID string, req models.CreateOrderRequest) (*models.CreateOrderResponse, error)
}

// PaymentCallback is told about every order placed through checkout so payment
// can be collected.
type PaymentCallback func(ctx context.Context, orderID int64, amount float64)

// WalletRules are the wallet limits shown next to the totals.
type WalletRules struct {
	MaxUsagePerOrder float64
	MinOrderAmount   float64
}

// Flow coordinates the side effects of checkout. Each collaborator call is
// independent and none is retried.
type Flow struct {
	Store    SessionStore
	Zones    ZoneChecker
	Chefs    ChefReader
	Coupons  CouponVerifier
	Bonus    BonusChecker
	Wallet   WalletReader
	Accounts AccountLookup
	Slots    SlotChecker
	Orders   OrderPlacer
	OnPlaced PaymentCallback
	Rules    WalletRules
	Logger   *zap.Logger
	Now      func() time.Time
}

func (f *Flow) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

func (f *Flow) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

// owned loads and authorizes a session inside an update. A guest session is
// adopted by the first signed-in caller, which is how a checkout continues
// after a login-required rejection. A submit that never recorded its outcome is
// released before fn runs.
func (f *Flow) owned(callerID string, fn func(*Session) error) func(*Session) error {
	return func(s *Session) error {
		if s.UserID != "" && s.UserID != callerID {
			return models.ErrSessionNotFound
		}
		if s.UserID == "" && callerID != "" {
			s.UserID = callerID
		}
		if s.RecoverStaleSubmit(f.now()) {
			f.logger().Warn("released interrupted checkout submit", zap.String("session", s.ID))
		}
		return fn(s)
	}
}

// Start opens a new checkout session.
func (f *Flow) Start(ctx context.Context, callerID string) (*Session, error) {
	s := NewSession(uuid.NewString(), callerID, f.now())
	if err := f.Store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("flow.Start: %w", err)
	}
	return s, nil
}

func (f *Flow) Get(ctx context.Context, id, callerID string) (*Session, error) {
	s, err := f.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.UserID != "" && s.UserID != callerID {
		return nil, models.ErrSessionNotFound
	}
	s.RecoverStaleSubmit(f.now())
	return s, nil
}

// Cancel discards the session.
func (f *Flow) Cancel(ctx context.Context, id, callerID string) error {
	if _, err := f.Get(ctx, id, callerID); err != nil {
		return err
	}
	return f.Store.Delete(ctx, id)
}

// UpdateCart replaces the cart and recomputes totals.
func (f *Flow) UpdateCart(ctx context.Context, id, callerID string, cart Cart) (*Session, error) {
	return f.Store.Update(ctx, id, f.owned(callerID, func(s *Session) error {
		if err := s.SetCart(cart); err != nil {
			return err
		}
		return f.recompute(ctx, s)
	}))
}

// UpdateAddress stores the address and, when it is complete enough, validates
// it against the cart's chef. The check runs outside the session update; its
// result is only applied if no newer edit superseded it.
func (f *Flow) UpdateAddress(ctx context.Context, id, callerID string, addr models.AddressQuery) (*Session, error) {
	var (
		gen    uint64
		chefID int64
		check  bool
	)
	s, err := f.Store.Update(ctx, id, f.owned(callerID, func(s *Session) error {
		if err := s.SetAddress(addr); err != nil {
			return err
		}
		if s.Validation.ZoneValidated && s.Validation.ChefID == s.Cart.ChefID {
			// Only non-locating fields changed.
			return nil
		}
		if err := geocoding.CheckAddressInput(s.Address); err != nil {
			s.Validation.Message = err.Error()
			return nil
		}
		if s.Cart.ChefID == 0 {
			s.Validation.Message = "Add items to your cart before entering an address"
			return nil
		}
		gen, chefID, check = s.BeginValidation(), s.Cart.ChefID, true
		return nil
	}))
	if err != nil || !check {
		return s, err
	}

	res, vErr := f.Zones.Validate(ctx, chefID, s.Address)

	return f.Store.Update(ctx, id, f.owned(callerID, func(s *Session) error {
		if vErr != nil {
			msg := models.ErrValidationUnavailable.Error()
			if errors.Is(vErr, models.ErrGeocodeFailed) || errors.Is(vErr, models.ErrChefInactive) ||
				errors.Is(vErr, models.ErrInvalidPincode) || errors.Is(vErr, models.ErrMissingArea) {
				msg = rootMessage(vErr)
			} else if !errors.Is(vErr, models.ErrValidationUnavailable) {
				f.logger().Error("zone validation failed", zap.String("session", id), zap.Error(vErr))
			}
			s.FailValidation(gen, msg)
			return nil
		}
		if !s.ApplyValidation(gen, res) {
			f.logger().Debug("dropping stale zone validation", zap.String("session", id), zap.Uint64("gen", gen))
			return nil
		}
		return f.recompute(ctx, s)
	}))
}

// rootMessage returns the text of the sentinel at the bottom of a wrap chain.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// ConfirmAddress is the explicit confirm step that reveals the totals.
func (f *Flow) ConfirmAddress(ctx context.Context, id, callerID string) (*Session, error) {
	return f.Store.Update(ctx, id, f.owned(callerID, func(s *Session) error {
		if err := s.ConfirmAddress(); err != nil {
			return err
		}
		return f.recompute(ctx, s)
	}))
}

// ApplyCoupon verifies code against the current subtotal and fee.
func (f *Flow) ApplyCoupon(ctx context.Context, id, callerID, code string) (*Session, error) {
	return f.Store.Update(ctx, id, f.owned(callerID, func(s *Session) error {
		if err := s.requireConfirmed(); err != nil {
			return err
		}
		res, err := f.Coupons.Verify(ctx, code, s.Totals.Subtotal, s.Totals.DeliveryFee)
		if err != nil {
			return err
		}
		s.CouponCode, s.Discount = res.Code, res.DiscountAmount
		return f.recompute(ctx, s)
	}))
}

func (f *Flow) RemoveCoupon(ctx context.Context, id, callerID string) (*Session, error) {
	return f.Store.Update(ctx, id, f.owned(callerID, func(s *Session) error {
		s.CouponCode, s.Discount = "", 0
		return f.recompute(ctx, s)
	}))
}

// SetUseWallet toggles wallet credit. Guests have no wallet.
func (f *Flow) SetUseWallet(ctx context.Context, id, callerID string, use bool) (*Session, error) {
	return f.Store.Update(ctx, id, f.owned(callerID, func(s *Session) error {
		if err := s.requireConfirmed(); err != nil {
			return err
		}
		s.UseWallet = use && s.UserID != ""
		return f.recompute(ctx, s)
	}))
}

// SetUseBonus toggles the referral bonus.
func (f *Flow) SetUseBonus(ctx context.Context, id, callerID string, use bool) (*Session, error) {
	return f.Store.Update(ctx, id, f.owned(callerID, func(s *Session) error {
		if err := s.requireConfirmed(); err != nil {
			return err
		}
		s.UseBonus = use
		return f.recompute(ctx, s)
	}))
}

// SubmitRequest carries the details collected on the last checkout step.
type SubmitRequest struct {
	Contact
	DeliveryDate string `json:"deliveryDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DeliverySlot string `json:"deliverySlot,omitempty" validate:"omitempty,oneof=morning afternoon evening"`
	ReferralCode string `json:"referralCode,omitempty"`
}

// Submit places the order. The guards run against the stored session, which
// moves to submitting so a second submit is refused while the first is in
// flight. A guard failure is recorded on the session and returned.
func (f *Flow) Submit(ctx context.Context, id, callerID string, req SubmitRequest) (*Session, error) {
	var guardErr error
	s, err := f.Store.Update(ctx, id, f.owned(callerID, func(s *Session) error {
		if err := s.requireConfirmed(); err != nil {
			return err
		}
		s.Contact = Contact{
			CustomerName: strings.TrimSpace(req.CustomerName),
			Phone:        strings.TrimSpace(req.Phone),
			Email:        strings.TrimSpace(req.Email),
		}
		facts, err := f.submitFacts(ctx, s, req)
		if err != nil {
			return err
		}
		if guardErr = s.BeginSubmit(facts, f.now()); guardErr != nil {
			s.FailSubmit(guardErr)
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	if guardErr != nil {
		return s, guardErr
	}

	res, placeErr := f.Orders.PlaceOrder(ctx, s.UserID, f.orderRequest(s, req))

	// The outcome is recorded even when the client has gone away, otherwise the
	// session would stay in submitting.
	ctx = context.WithoutCancel(ctx)
	final, err := f.Store.Update(ctx, id, func(s *Session) error {
		if placeErr != nil {
			s.FailSubmit(placeErr)
			return nil
		}
		return s.CompleteSubmit(res, fmt.Sprintf("/api/orders/%d/payment-qr", res.ID))
	})
	if err != nil {
		if placeErr == nil {
			// The order exists even though the session could not record it.
			f.logger().Error("order placed but checkout session not updated",
				zap.String("session", id), zap.Int64("orderID", res.ID), zap.Error(err))
		}
		return nil, err
	}
	if placeErr != nil {
		return final, placeErr
	}

	if f.OnPlaced != nil {
		f.OnPlaced(ctx, res.ID, res.Total)
	}
	return final, nil
}

func (f *Flow) submitFacts(ctx context.Context, s *Session, req SubmitRequest) (SubmitFacts, error) {
	var facts SubmitFacts
	if s.Cart.ChefID != 0 {
		chef, err := f.Chefs.GetChef(ctx, s.Cart.ChefID)
		if err != nil {
			return facts, err
		}
		facts.ChefActive = chef.IsActive
	}
	if s.UserID == "" && s.Phone != "" {
		_, err := f.Accounts.FindByPhone(ctx, s.Phone)
		switch {
		case err == nil:
			facts.LoginRequired = true
		case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrInvalidPhone):
		default:
			return facts, err
		}
	}
	if _, _, rejection := f.Slots.Resolve(s.Cart.Items, req.DeliveryDate, req.DeliverySlot, f.now()); rejection != nil {
		facts.Slot = rejection
	}
	return facts, nil
}

func (f *Flow) orderRequest(s *Session, req SubmitRequest) models.CreateOrderRequest {
	out := models.CreateOrderRequest{
		CustomerName: s.CustomerName,
		Phone:        s.Phone,
		Email:        s.Email,
		AddressQuery: s.Address,
		Items:        s.Cart.Items,
		Subtotal:     s.Totals.Subtotal,
		DeliveryFee:  s.Totals.DeliveryFee,
		Discount:     s.Totals.Discount,
		Total:        s.Totals.Total,
		CouponCode:   s.CouponCode,
		ReferralCode: req.ReferralCode,
		UseBonus:     s.UseBonus,
		UseWallet:    s.UseWallet,
		ChefID:       s.Cart.ChefID,
		DeliveryDate: req.DeliveryDate,
		DeliverySlot: req.DeliverySlot,
	}
	if loc := s.Validation.Location; loc != nil && s.Validation.InDeliveryZone {
		lat, lon := loc.Latitude, loc.Longitude
		out.CustomerLatitude, out.CustomerLongitude = &lat, &lon
	}
	return out
}

// recompute refreshes the fee, coupon, bonus eligibility and totals. It runs on
// every change to the cart, address, coupon or toggles.
func (f *Flow) recompute(ctx context.Context, s *Session) error {
	subtotal := s.Cart.Subtotal()
	if s.Cart.ChefID == 0 || len(s.Cart.Items) == 0 {
		s.Totals = pricing.Totals{Subtotal: subtotal}
		s.Bonus = nil
		return nil
	}

	chef, err := f.Chefs.GetChef(ctx, s.Cart.ChefID)
	if err != nil {
		return err
	}

	var distance *float64
	hasLocation := s.Validation.InDeliveryZone && s.Validation.Location != nil && s.Validation.ChefID == chef.ID
	if hasLocation {
		d := delivery.CalculateDistance(chef.Latitude, chef.Longitude, s.Validation.Location.Latitude, s.Validation.Location.Longitude)
		distance = &d
	}
	fee := delivery.CalculateDeliveryFee(hasLocation, distance, subtotal, chef.DeliverySettings)

	if s.CouponCode != "" {
		res, err := f.Coupons.Verify(ctx, s.CouponCode, subtotal, fee.DeliveryFee)
		switch {
		case err == nil:
			s.Discount = res.DiscountAmount
		case errors.Is(err, models.ErrInvalidCoupon):
			s.LastError = fmt.Sprintf("Coupon %s was removed: %s", s.CouponCode, err.Error())
			s.CouponCode, s.Discount = "", 0
		default:
			return err
		}
	}

	in := pricing.Input{
		Subtotal:               subtotal,
		DeliveryFee:            fee.DeliveryFee,
		IsFreeDelivery:         fee.IsFreeDelivery,
		CouponDiscount:         s.Discount,
		WalletMaxUsagePerOrder: f.Rules.MaxUsagePerOrder,
		WalletMinOrderAmount:   f.Rules.MinOrderAmount,
	}

	s.Bonus = nil
	if s.UserID != "" {
		if f.Wallet != nil {
			summary, err := f.Wallet.Summary(ctx, s.UserID)
			if err != nil {
				return err
			}
			in.WalletBalance = summary.WalletBalance
		}
		if f.Bonus != nil {
			before := pricing.Compute(in)
			elig, err := f.Bonus.CheckBonusEligibility(ctx, s.UserID, before.Total)
			if err != nil {
				return err
			}
			s.Bonus = elig
			if s.UseBonus && elig.Eligible {
				in.Bonus, in.UseBonus = elig.Bonus, true
			}
		}
	}
	in.UseWallet = s.UseWallet

	s.Totals = pricing.Compute(in)
	return nil
}
