// Package orders places orders: it re-prices the checkout on the server, stores
// the order with every balance mutation in one transaction, then announces it.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homechef-delivery/internal/models"
	"homechef-delivery/internal/modules/delivery"
	"homechef-delivery/internal/modules/pricing"
	"homechef-delivery/internal/modules/wallet"
	"homechef-delivery/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChefReader loads the chef an order is placed with.
type ChefReader interface {
	GetChef(ctx context.Context, chefID int64) (*models.Chef, error)
}

// Accounts is the account support order placement needs.
type Accounts interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByReferralCode(ctx context.Context, code string) (*models.User, error)
	NewCheckoutAccount(name, phone, email string, referrer *models.User, signupBonus float64) (*models.User, error)
	IssueAccessToken(user *models.User) (string, error)
}

// AccountStore writes accounts and balances inside the order transaction.
type AccountStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) (*models.User, error)
	AdjustBalancesTx(ctx context.Context, tx pgx.Tx, userID string, walletDelta, bonusDelta float64) error
}

type CouponVerifier interface {
	Verify(ctx context.Context, code string, subtotal, deliveryFee float64) (*models.VerifyCouponResponse, error)
}

type CouponRedeemer interface {
	RedeemTx(ctx context.Context, tx pgx.Tx, code string) error
}

// TxRunner runs fn in one database transaction.
type TxRunner func(ctx context.Context, fn func(tx pgx.Tx) error) error

// Policy holds the configured checkout rules.
type Policy struct {
	Wallet              wallet.Policy
	ReferralReward      float64
	ReferralSignupBonus float64
	Slots               SlotPolicy
}

// ServiceInterface defines the contract for the order service.
type ServiceInterface interface {
	PlaceOrder(ctx context.Context, callerID string, req models.CreateOrderRequest) (*models.CreateOrderResponse, error)
	GetOrderDetails(ctx context.Context, orderID int64, userID, role string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error)
	PaymentQR(ctx context.Context, orderID int64, userID, role string) ([]byte, error)
}

// Dependencies wires the service.
type Dependencies struct {
	Repo         RepositoryInterface
	Chefs        ChefReader
	Accounts     Accounts
	AccountStore AccountStore
	Coupons      CouponVerifier
	CouponStore  CouponRedeemer
	RunInTx      TxRunner
	Publisher    EventPublisher
	QR           PaymentQR
	Policy       Policy
	Logger       *zap.Logger
	Now          func() time.Time
}

// Service implements the order service logic.
type Service struct {
	Dependencies
}

// NewService creates a new order service.
func NewService(deps Dependencies) *Service {
	if deps.Publisher == nil {
		deps.Publisher = NopPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{Dependencies: deps}
}

// placement is everything decided before the transaction starts.
type placement struct {
	order      *models.Order
	account    *models.User
	newAccount bool
	referrer   *models.User
}

// PlaceOrder runs the guards in order (cart, chef, phone, name, login, slot),
// prices the order from the items and the chef's settings, and commits it. The
// client's subtotal, fee, discount and total are ignored; item prices are taken
// from the request.
func (s *Service) PlaceOrder(ctx context.Context, callerID string, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, models.ErrCartEmpty
	}

	chef, err := s.Chefs.GetChef(ctx, req.ChefID)
	if err != nil {
		return nil, fmt.Errorf("service.PlaceOrder: %w", err)
	}
	if !chef.IsActive {
		return nil, models.ErrChefInactive
	}

	phone := strings.TrimSpace(req.Phone)
	if !utils.IsValidPhone(phone) {
		return nil, models.ErrInvalidPhone
	}
	if !utils.IsValidCustomerName(req.CustomerName) {
		return nil, models.ErrInvalidName
	}

	p, err := s.resolveAccount(ctx, callerID, phone, req)
	if err != nil {
		return nil, err
	}

	day, slot, rejection := s.Policy.Slots.Resolve(req.Items, req.DeliveryDate, req.DeliverySlot, s.Now())
	if rejection != nil {
		return nil, rejection
	}

	order, err := s.price(ctx, chef, p.account, req)
	if err != nil {
		return nil, err
	}
	order.Phone = phone
	order.DeliveryDate = &day
	order.DeliverySlot = slot
	p.order = order

	created, err := s.commit(ctx, p)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, created)

	res := &models.CreateOrderResponse{
		ID:                   created.ID,
		Total:                created.Total,
		PaymentStatus:        created.PaymentStatus,
		AccountCreated:       p.newAccount,
		AppliedReferralBonus: created.BonusUsed,
	}
	if p.newAccount {
		token, err := s.Accounts.IssueAccessToken(p.account)
		if err != nil {
			// The order is already stored; the customer can still log in later.
			s.Logger.Error("failed to issue access token for checkout account",
				zap.String("userID", p.account.ID), zap.Error(err))
		} else {
			res.AccessToken = token
		}
	}
	return res, nil
}

func (s *Service) resolveAccount(ctx context.Context, callerID, phone string, req models.CreateOrderRequest) (*placement, error) {
	if callerID != "" {
		account, err := s.Accounts.GetProfile(ctx, callerID)
		if err != nil {
			return nil, fmt.Errorf("service.PlaceOrder: %w", err)
		}
		return &placement{account: account}, nil
	}

	_, err := s.Accounts.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		return nil, loginRequired()
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("service.PlaceOrder: %w", err)
	}

	var referrer *models.User
	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		referrer, err = s.Accounts.FindByReferralCode(ctx, code)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("service.PlaceOrder: %w", err)
			}
			s.Logger.Info("ignoring unknown referral code", zap.String("code", code))
			referrer = nil
		}
	}

	account, err := s.Accounts.NewCheckoutAccount(strings.TrimSpace(req.CustomerName), phone, req.Email, referrer, s.Policy.ReferralSignupBonus)
	if err != nil {
		return nil, err
	}
	return &placement{account: account, newAccount: true, referrer: referrer}, nil
}

func loginRequired() *models.OrderRejection {
	return &models.OrderRejection{
		Message:       models.ErrLoginRequired.Error(),
		RequiresLogin: true,
		Err:           models.ErrLoginRequired,
	}
}

// price recomputes every figure of the order.
func (s *Service) price(ctx context.Context, chef *models.Chef, account *models.User, req models.CreateOrderRequest) (*models.Order, error) {
	subtotal := decimal.Zero
	for _, it := range req.Items {
		subtotal = subtotal.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	sub := subtotal.InexactFloat64()
	if sub < chef.MinOrderAmount {
		return nil, fmt.Errorf("%w (₹%.0f)", models.ErrBelowMinimumOrder, chef.MinOrderAmount)
	}

	hasLocation := req.CustomerLatitude != nil && req.CustomerLongitude != nil
	var distance *float64
	if hasLocation {
		d := delivery.CalculateDistance(chef.Latitude, chef.Longitude, *req.CustomerLatitude, *req.CustomerLongitude)
		if !delivery.InZone(d, chef.MaxDeliveryDistanceKm) {
			return nil, models.ErrOutOfZone
		}
		distance = &d
	}
	fee := delivery.CalculateDeliveryFee(hasLocation, distance, sub, chef.DeliverySettings)

	var discount float64
	var couponCode *string
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		verified, err := s.Coupons.Verify(ctx, code, sub, fee.DeliveryFee)
		if err != nil {
			return nil, err
		}
		discount = verified.DiscountAmount
		couponCode = &verified.Code
	}

	in := pricing.Input{
		Subtotal:               sub,
		DeliveryFee:            fee.DeliveryFee,
		IsFreeDelivery:         fee.IsFreeDelivery,
		CouponDiscount:         discount,
		WalletBalance:          account.WalletBalance,
		WalletMaxUsagePerOrder: s.Policy.Wallet.WalletMaxUsagePerOrder,
		WalletMinOrderAmount:   s.Policy.Wallet.WalletMinOrderAmount,
	}
	if req.UseBonus {
		before := pricing.Compute(in)
		if elig := wallet.Eligibility(account.BonusBalance, before.Total, s.Policy.Wallet.BonusMinOrderAmount); elig.Eligible {
			in.Bonus, in.UseBonus = elig.Bonus, true
		}
	}
	in.UseWallet = req.UseWallet
	totals := pricing.Compute(in)

	order := &models.Order{
		ChefID:            chef.ID,
		CustomerName:      strings.TrimSpace(req.CustomerName),
		AddressQuery:      req.AddressQuery.Normalized(),
		CustomerLatitude:  req.CustomerLatitude,
		CustomerLongitude: req.CustomerLongitude,
		Items:             req.Items,
		Subtotal:          totals.Subtotal,
		DeliveryFee:       totals.DeliveryFee,
		Discount:          totals.Discount,
		BonusUsed:         totals.BonusUsed,
		WalletUsed:        totals.WalletUsed,
		Total:             totals.Total,
		CouponCode:        couponCode,
		Status:            models.OrderStatusPending,
		PaymentStatus:     models.PaymentStatusPending,
	}
	if distance != nil {
		rounded := delivery.RoundDistance(*distance)
		order.DistanceKm = &rounded
	}
	return order, nil
}

func (s *Service) commit(ctx context.Context, p *placement) (*models.Order, error) {
	var created *models.Order
	err := s.RunInTx(ctx, func(tx pgx.Tx) error {
		account := p.account
		if p.newAccount {
			stored, err := s.AccountStore.CreateTx(ctx, tx, account)
			if err != nil {
				if errors.Is(err, models.ErrConflict) {
					// Someone registered this phone since the guard ran.
					return loginRequired()
				}
				return err
			}
			account = stored
		}
		p.order.UserID = account.ID

		order, err := s.Repo.CreateTx(ctx, tx, p.order)
		if err != nil {
			return err
		}

		if order.CouponCode != nil {
			if err := s.CouponStore.RedeemTx(ctx, tx, *order.CouponCode); err != nil {
				return err
			}
		}

		if order.WalletUsed > 0 || order.BonusUsed > 0 {
			if err := s.AccountStore.AdjustBalancesTx(ctx, tx, account.ID, -order.WalletUsed, -order.BonusUsed); err != nil {
				if errors.Is(err, models.ErrConflict) {
					return models.ErrBalanceChanged
				}
				return err
			}
		}

		if p.referrer != nil && s.Policy.ReferralReward > 0 {
			if err := s.AccountStore.AdjustBalancesTx(ctx, tx, p.referrer.ID, s.Policy.ReferralReward, 0); err != nil {
				return err
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.PlaceOrder: %w", err)
	}
	return created, nil
}

func (s *Service) publish(ctx context.Context, o *models.Order) {
	evt := models.OrderPlacedEvent{
		OrderID:     o.ID,
		ChefID:      o.ChefID,
		UserID:      o.UserID,
		Total:       o.Total,
		DeliveryFee: o.DeliveryFee,
		ItemCount:   len(o.Items),
		PlacedAt:    o.CreatedAt,
	}
	if err := s.Publisher.PublishOrderPlaced(ctx, evt); err != nil {
		s.Logger.Warn("failed to publish order.placed", zap.Int64("orderID", o.ID), zap.Error(err))
	}
}

// GetOrderDetails retrieves a single order. Customers only see their own orders.
func (s *Service) GetOrderDetails(ctx context.Context, orderID int64, userID, role string) (*models.Order, error) {
	order, err := s.Repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GetOrderDetails: %w", err)
	}
	if role != models.RoleAdmin && order.UserID != userID {
		return nil, models.ErrNotFound
	}
	return order, nil
}

// ListUserOrders retrieves all orders for a specific user.
func (s *Service) ListUserOrders(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error) {
	orders, total, err := s.Repo.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListUserOrders: %w", err)
	}
	return orders, total, nil
}

// PaymentQR renders the UPI QR for an unpaid order.
func (s *Service) PaymentQR(ctx context.Context, orderID int64, userID, role string) ([]byte, error) {
	order, err := s.GetOrderDetails(ctx, orderID, userID, role)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, models.ErrAlreadyPaid
	}
	png, err := s.QR.Generate(order.ID, order.Total)
	if err != nil {
		return nil, fmt.Errorf("service.PaymentQR: %w", err)
	}
	return png, nil
}
