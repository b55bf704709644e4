package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// GenerateSecureToken creates a random, URL-safe string.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// referralAlphabet omits characters that are easy to misread (0/O, 1/I).
const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateReferralCode creates a short, human-typable referral code.
func GenerateReferralCode(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(referralAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("rand.Int failed: %w", err)
		}
		out[i] = referralAlphabet[n.Int64()]
	}
	return string(out), nil
}
