package models

import (
	"time"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"

	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
)

// OrderItem is one cart line as submitted and as stored.
type OrderItem struct {
	MenuItemID int64   `json:"menuItemId" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Category   string  `json:"category,omitempty"`
	Price      float64 `json:"price" validate:"gte=0"`
	Quantity   int     `json:"quantity" validate:"min=1"`
}

// LineTotal is price times quantity.
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Order represents a placed order, a snapshot of the checkout at submission.
type Order struct {
	ID           int64  `json:"id"`
	UserID       string `json:"userId"`
	ChefID       int64  `json:"chefId"`
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"`
	AddressQuery
	CustomerLatitude  *float64    `json:"customerLatitude,omitempty"`
	CustomerLongitude *float64    `json:"customerLongitude,omitempty"`
	DistanceKm        *float64    `json:"distanceKm,omitempty"`
	Items             []OrderItem `json:"items"`
	Subtotal          float64     `json:"subtotal"`
	DeliveryFee       float64     `json:"deliveryFee"`
	Discount          float64     `json:"discount"`
	BonusUsed         float64     `json:"bonusUsed"`
	WalletUsed        float64     `json:"walletUsed"`
	Total             float64     `json:"total"`
	CouponCode        *string     `json:"couponCode,omitempty"`
	DeliveryDate      *time.Time  `json:"deliveryDate,omitempty"`
	DeliverySlot      string      `json:"deliverySlot,omitempty"`
	Status            string      `json:"status"`
	PaymentStatus     string      `json:"paymentStatus"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// CreateOrderRequest is the consolidated payload posted at the end of checkout.
// Subtotal, DeliveryFee, Discount and Total are the client's figures; the server
// recomputes all of them from the item prices and quantities.
type CreateOrderRequest struct {
	CustomerName string `json:"customerName" validate:"required,min=2,max=100"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	AddressQuery
	Items             []OrderItem `json:"items" validate:"dive"`
	Subtotal          float64     `json:"subtotal"`
	DeliveryFee       float64     `json:"deliveryFee"`
	Discount          float64     `json:"discount"`
	Total             float64     `json:"total"`
	CustomerLatitude  *float64    `json:"customerLatitude,omitempty" validate:"omitempty,latitude"`
	CustomerLongitude *float64    `json:"customerLongitude,omitempty" validate:"omitempty,longitude"`
	CouponCode        string      `json:"couponCode,omitempty"`
	ReferralCode      string      `json:"referralCode,omitempty"`
	UseBonus          bool        `json:"useBonus"`
	UseWallet         bool        `json:"useWallet"`
	ChefID            int64       `json:"chefId" validate:"required,gt=0"`
	DeliveryDate      string      `json:"deliveryDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DeliverySlot      string      `json:"deliverySlot,omitempty" validate:"omitempty,oneof=morning afternoon evening"`
}

// CreateOrderResponse is the reply to a successfully created order.
type CreateOrderResponse struct {
	ID                   int64   `json:"id"`
	Total                float64 `json:"total"`
	PaymentStatus        string  `json:"paymentStatus"`
	AccountCreated       bool    `json:"accountCreated"`
	AccessToken          string  `json:"accessToken,omitempty"`
	AppliedReferralBonus float64 `json:"appliedReferralBonus,omitempty"`
}

// OrderRejection is a business rejection of an order submission that the client
// can act on (log in, pick another date). It unwraps to the matching sentinel.
type OrderRejection struct {
	Message            string `json:"message"`
	RequiresLogin      bool   `json:"requiresLogin,omitempty"`
	RequiresReschedule bool   `json:"requiresReschedule,omitempty"`
	NextAvailableDate  string `json:"nextAvailableDate,omitempty"`
	Err                error  `json:"-"`
}

func (r *OrderRejection) Error() string { return r.Message }

func (r *OrderRejection) Unwrap() error { return r.Err }

// OrderPlacedEvent is published after an order has been committed.
type OrderPlacedEvent struct {
	OrderID     int64     `json:"orderId"`
	ChefID      int64     `json:"chefId"`
	UserID      string    `json:"userId"`
	Total       float64   `json:"total"`
	DeliveryFee float64   `json:"deliveryFee"`
	ItemCount   int       `json:"itemCount"`
	PlacedAt    time.Time `json:"placedAt"`
}
