package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPincode(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"400070", true},
		{"110001", true},
		{"040070", false},
		{"40007", false},
		{"4000700", false},
		{"40007a", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidPincode(tt.in), "IsValidPincode(%q)", tt.in)
	}
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("9876543210"))
	assert.False(t, IsValidPhone("987654321"))
	assert.False(t, IsValidPhone("+919876543210"))
	assert.False(t, IsValidPhone("98765 43210"))
}

func TestIsValidCustomerName(t *testing.T) {
	assert.True(t, IsValidCustomerName("Asha"))
	assert.True(t, IsValidCustomerName("  Jo "))
	assert.False(t, IsValidCustomerName(""))
	assert.False(t, IsValidCustomerName("   "))
	assert.False(t, IsValidCustomerName("A"))
	assert.False(t, IsValidCustomerName(strings.Repeat("a", 101)))
}

func TestValidator_CustomTags(t *testing.T) {
	type contact struct {
		Phone   string `validate:"required,phone10"`
		Pincode string `validate:"omitempty,pincode"`
	}
	v := GetValidator()

	assert.NoError(t, v.Validate(contact{Phone: "9876543210"}))
	assert.NoError(t, v.Validate(contact{Phone: "9876543210", Pincode: "400001"}))
	assert.Error(t, v.Validate(contact{Phone: "12345"}))
	assert.Error(t, v.Validate(contact{Phone: "9876543210", Pincode: "4000"}))
}

func TestGenerateReferralCode(t *testing.T) {
	code, err := GenerateReferralCode(8)
	require.NoError(t, err)
	assert.Len(t, code, 8)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(referralAlphabet, r), "unexpected rune %q", r)
	}
}

func TestGenerateSecureToken(t *testing.T) {
	tok, err := GenerateSecureToken(16)
	require.NoError(t, err)
	assert.Len(t, tok, 32)
}
