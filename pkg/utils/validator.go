package utils

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	phonePattern   = regexp.MustCompile(`^[0-9]{10}$`)
)

// IsValidPincode reports whether s is a 6-digit Indian postal code.
func IsValidPincode(s string) bool { return pincodePattern.MatchString(s) }

// IsValidPhone reports whether s is exactly ten digits.
func IsValidPhone(s string) bool { return phonePattern.MatchString(s) }

// IsValidCustomerName reports whether s, trimmed, is 2 to 100 characters long.
func IsValidCustomerName(s string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= 2 && n <= 100
}

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	validate *validator.Validate
}

var (
	validatorOnce     sync.Once
	validatorInstance *Validator
)

// GetValidator returns the shared validator with the custom tags registered.
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
			return IsValidPincode(fl.Field().String())
		})
		_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		})
		validatorInstance = &Validator{validate: v}
	})
	return validatorInstance
}

// Validate validates a struct using its `validate` tags.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
