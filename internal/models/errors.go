package models

import "errors"

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a unique value (phone, referral code) is already taken.
	ErrConflict = errors.New("resource already exists")

	// ErrChefInactive is returned when the chef is not currently accepting orders.
	ErrChefInactive = errors.New("this kitchen is not accepting orders right now")

	// ErrInvalidPincode is returned for a pincode that is not six digits.
	ErrInvalidPincode = errors.New("please enter a valid 6-digit pincode")

	// ErrMissingArea is returned when neither an area nor a pincode was supplied.
	ErrMissingArea = errors.New("please enter your area or pincode")

	// ErrGeocodeFailed is returned when no provider could resolve the address.
	ErrGeocodeFailed = errors.New("could not locate this address")

	// ErrValidationUnavailable is returned when zone validation could not complete
	// because of a network error or timeout. The caller may retry.
	ErrValidationUnavailable = errors.New("could not validate your address, please try again")

	// ErrInvalidCoupon is returned for unknown, expired or exhausted coupons.
	ErrInvalidCoupon = errors.New("invalid or expired coupon")

	// ErrCartEmpty is returned when an order is submitted without items.
	ErrCartEmpty = errors.New("your cart is empty")

	// ErrBelowMinimumOrder is returned when the subtotal is below the chef's minimum order.
	ErrBelowMinimumOrder = errors.New("order is below the kitchen's minimum order amount")

	// ErrInvalidPhone is returned when the phone number is not exactly 10 digits.
	ErrInvalidPhone = errors.New("please enter a valid 10-digit phone number")

	// ErrInvalidName is returned when the customer name is missing or too short.
	ErrInvalidName = errors.New("please enter your name (at least 2 characters)")

	// ErrSubmitInterrupted is recorded when a submit never reported its outcome.
	// The order may or may not exist.
	ErrSubmitInterrupted = errors.New("your last submit did not finish, please check your orders before submitting again")

	// ErrLoginRequired is returned when the phone belongs to a registered account
	// but the request is not authenticated as that account.
	ErrLoginRequired = errors.New("this phone number is already registered, please log in to continue")

	// ErrRescheduleRequired is returned when the requested slot has passed its cutoff.
	ErrRescheduleRequired = errors.New("the selected delivery slot is no longer available, please pick another date")

	// ErrInvalidTransition is returned when a checkout step is attempted out of order.
	ErrInvalidTransition = errors.New("this checkout step is not available right now")

	// ErrAddressNotValidated is returned when an address is confirmed before a
	// successful, in-zone validation.
	ErrAddressNotValidated = errors.New("please validate a deliverable address first")

	// ErrOutOfZone is returned when the validated address is beyond the chef's radius.
	ErrOutOfZone = errors.New("this address is outside the delivery zone")

	// ErrBalanceChanged is returned when a wallet or bonus debit no longer fits the
	// stored balance at commit time.
	ErrBalanceChanged = errors.New("your wallet or bonus balance changed, please review your order")

	// ErrAlreadyPaid is returned when a payment is requested for a paid order.
	ErrAlreadyPaid = errors.New("this order has already been paid")

	// ErrSessionNotFound is returned when a checkout session expired or never existed.
	ErrSessionNotFound = errors.New("checkout session not found")

	// ErrSessionBusy is returned when another request updated the session first.
	ErrSessionBusy = errors.New("checkout session is being updated, please try again")

	// ErrForbidden is returned when the caller does not own the resource.
	ErrForbidden = errors.New("you are not allowed to access this resource")
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Message string `json:"message"`
}
