// Package checkout owns the server-side checkout session: the address
// validation handshake, the confirm step, live totals and the final submit.
package checkout

import (
	"errors"
	"time"

	"homechef-delivery/internal/models"
	"homechef-delivery/internal/modules/pricing"
	"homechef-delivery/pkg/utils"
)

// State is a checkout step.
type State string

const (
	StateAddressEntry     State = "address-entry"
	StateAddressConfirmed State = "address-confirmed"
	StateSubmitting       State = "submitting"
	StateSuccess          State = "success"
	StateFailed           State = "failed"
)

// Cart is what the customer is ordering and from whom.
type Cart struct {
	ChefID int64              `json:"chefId"`
	Items  []models.OrderItem `json:"items"`
}

// Subtotal is the sum of line totals.
func (c Cart) Subtotal() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.LineTotal()
	}
	return sum
}

// Validation tracks the zone check of the current address. Gen increases on
// every address or chef change so results of superseded checks can be dropped.
type Validation struct {
	Gen            uint64                   `json:"gen"`
	InFlight       bool                     `json:"inFlight"`
	ZoneValidated  bool                     `json:"zoneValidated"`
	InDeliveryZone bool                     `json:"inDeliveryZone"`
	ChefID         int64                    `json:"chefId,omitempty"`
	Status         models.ZoneStatus        `json:"status,omitempty"`
	Location       *models.ResolvedLocation `json:"location,omitempty"`
	DistanceKm     float64                  `json:"distanceKm,omitempty"`
	Message        string                   `json:"message,omitempty"`
}

// Contact is who the order is for.
type Contact struct {
	CustomerName string `json:"customerName" validate:"required,min=2,max=100"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
}

// PlacedOrder is kept on the session after a successful submit.
type PlacedOrder struct {
	models.CreateOrderResponse
	PaymentQRURL string `json:"paymentQrUrl"`
}

// Session is one customer's checkout.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`
	Contact
	Cart            Cart                     `json:"cart"`
	Address         models.AddressQuery      `json:"address"`
	Validation      Validation               `json:"validation"`
	State           State                    `json:"state"`
	CouponCode      string                   `json:"couponCode,omitempty"`
	Discount        float64                  `json:"couponDiscount"`
	UseBonus        bool                     `json:"useBonus"`
	UseWallet       bool                     `json:"useWallet"`
	Bonus           *models.BonusEligibility `json:"bonus,omitempty"`
	Totals          pricing.Totals           `json:"totals"`
	LastError       string                   `json:"lastError,omitempty"`
	Rejection       *models.OrderRejection   `json:"rejection,omitempty"`
	LastOrder       *PlacedOrder             `json:"lastOrder,omitempty"`
	SubmitStartedAt time.Time                `json:"submitStartedAt,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

// NewSession starts a checkout in address entry.
func NewSession(id, userID string, now time.Time) *Session {
	return &Session{ID: id, UserID: userID, State: StateAddressEntry, CreatedAt: now, UpdatedAt: now}
}

// leaveTerminal starts over after a finished checkout so the next edit begins a
// fresh order.
func (s *Session) leaveTerminal() {
	if s.State == StateSuccess {
		s.Reset()
	}
}

// clearValidation forgets the zone check and, with it, the confirm step.
func (s *Session) clearValidation() {
	s.Validation = Validation{Gen: s.Validation.Gen + 1}
	if s.State == StateAddressConfirmed || s.State == StateFailed {
		s.State = StateAddressEntry
	}
}

// SetCart replaces the cart. Switching chefs invalidates the resolved location,
// which was validated against the previous chef.
func (s *Session) SetCart(cart Cart) error {
	if s.State == StateSubmitting {
		return models.ErrInvalidTransition
	}
	s.leaveTerminal()
	if cart.ChefID != s.Cart.ChefID {
		s.clearValidation()
	}
	s.Cart = cart
	return nil
}

// SetAddress stores the typed address. Editing area or pincode clears the
// previous validation; other fields keep it.
func (s *Session) SetAddress(addr models.AddressQuery) error {
	if s.State == StateSubmitting {
		return models.ErrInvalidTransition
	}
	s.leaveTerminal()
	addr = addr.Normalized()
	if addr.Area != s.Address.Area || addr.Pincode != s.Address.Pincode || !s.Validation.ZoneValidated {
		s.clearValidation()
	}
	s.Address = addr
	return nil
}

// BeginValidation supersedes any running check and returns its generation.
func (s *Session) BeginValidation() uint64 {
	s.clearValidation()
	s.Validation.InFlight = true
	return s.Validation.Gen
}

// ApplyValidation records a zone result. Results from a superseded generation
// or for a chef no longer in the cart are dropped and false is returned.
func (s *Session) ApplyValidation(gen uint64, res *models.ZoneResult) bool {
	if gen != s.Validation.Gen || res.ChefID != s.Cart.ChefID {
		return false
	}
	s.Validation = Validation{
		Gen:            gen,
		ZoneValidated:  true,
		InDeliveryZone: res.Status == models.ZoneInZone,
		ChefID:         res.ChefID,
		Status:         res.Status,
		Location:       res.Location,
		DistanceKm:     res.DistanceKm,
		Message:        res.Message,
	}
	return true
}

// FailValidation records a check that could not complete. The address stays
// unvalidated and the customer can retry.
func (s *Session) FailValidation(gen uint64, message string) bool {
	if gen != s.Validation.Gen {
		return false
	}
	s.Validation.InFlight = false
	s.Validation.Message = message
	return true
}

// ConfirmAddress moves to address-confirmed, which requires a completed,
// in-zone validation for the cart's chef.
func (s *Session) ConfirmAddress() error {
	switch s.State {
	case StateAddressConfirmed:
		return nil
	case StateAddressEntry:
	default:
		return models.ErrInvalidTransition
	}
	if !s.Validation.ZoneValidated || s.Validation.ChefID != s.Cart.ChefID {
		return models.ErrAddressNotValidated
	}
	if !s.Validation.InDeliveryZone {
		return models.ErrOutOfZone
	}
	s.State = StateAddressConfirmed
	return nil
}

// requireConfirmed guards the options revealed by the confirm step.
func (s *Session) requireConfirmed() error {
	if s.State != StateAddressConfirmed {
		return models.ErrInvalidTransition
	}
	return nil
}

// SubmitFacts are the externally looked-up inputs of the submit guards.
type SubmitFacts struct {
	ChefActive    bool
	LoginRequired bool
	Slot          *models.OrderRejection
}

// SubmitStaleAfter is how long a session may stay in submitting before it is
// treated as interrupted. It exceeds any order placement timeout.
const SubmitStaleAfter = 2 * time.Minute

// RecoverStaleSubmit returns a session stuck in submitting to address-confirmed
// once SubmitStaleAfter has passed, so the customer can edit or resubmit.
func (s *Session) RecoverStaleSubmit(now time.Time) bool {
	if s.State != StateSubmitting || now.Sub(s.SubmitStartedAt) < SubmitStaleAfter {
		return false
	}
	s.FailSubmit(models.ErrSubmitInterrupted)
	return true
}

// BeginSubmit runs the submit guards in order (cart, chef, phone, name, login,
// slot) and moves to submitting. A failing guard leaves the state unchanged.
func (s *Session) BeginSubmit(f SubmitFacts, now time.Time) error {
	if s.State != StateAddressConfirmed {
		return models.ErrInvalidTransition
	}
	switch {
	case len(s.Cart.Items) == 0:
		return models.ErrCartEmpty
	case !f.ChefActive:
		return models.ErrChefInactive
	case !utils.IsValidPhone(s.Phone):
		return models.ErrInvalidPhone
	case !utils.IsValidCustomerName(s.CustomerName):
		return models.ErrInvalidName
	case f.LoginRequired:
		return &models.OrderRejection{
			Message:       models.ErrLoginRequired.Error(),
			RequiresLogin: true,
			Err:           models.ErrLoginRequired,
		}
	case f.Slot != nil:
		return f.Slot
	}
	s.State = StateSubmitting
	s.SubmitStartedAt = now
	s.LastError = ""
	s.Rejection = nil
	return nil
}

// CompleteSubmit ends the checkout: the order is kept for the payment step and
// the cart is emptied.
func (s *Session) CompleteSubmit(res *models.CreateOrderResponse, paymentQRURL string) error {
	if s.State != StateSubmitting {
		return models.ErrInvalidTransition
	}
	s.LastOrder = &PlacedOrder{CreateOrderResponse: *res, PaymentQRURL: paymentQRURL}
	s.Cart.Items = nil
	s.CouponCode, s.Discount = "", 0
	s.UseBonus, s.UseWallet = false, false
	s.Totals = pricing.Totals{}
	s.State = StateSuccess
	s.SubmitStartedAt = time.Time{}
	return nil
}

// FailSubmit returns to address-confirmed with the error surfaced. Actionable
// rejections are kept so the client can offer login or another date.
func (s *Session) FailSubmit(err error) {
	s.State = StateAddressConfirmed
	s.SubmitStartedAt = time.Time{}
	s.LastError = err.Error()
	var rejection *models.OrderRejection
	if errors.As(err, &rejection) {
		s.Rejection = rejection
	}
}

// Reset empties the checkout but keeps who it belongs to and their contact and
// address details.
func (s *Session) Reset() {
	gen := s.Validation.Gen
	*s = Session{
		ID:        s.ID,
		UserID:    s.UserID,
		Contact:   s.Contact,
		Address:   s.Address,
		LastOrder: s.LastOrder,
		State:     StateAddressEntry,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	s.Validation.Gen = gen + 1
}
