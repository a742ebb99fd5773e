package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var txHashPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)

// NormalizeTxHash validates an EVM transaction hash and returns its
// canonical form: 0x-prefixed, lowercase, 66 characters.
func NormalizeTxHash(hash string) (string, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return "", fmt.Errorf("transaction hash cannot be empty")
	}

	if !txHashPattern.MatchString(hash) {
		return "", fmt.Errorf("transaction hash must be 32 bytes of hex")
	}

	hash = strings.ToLower(hash)
	if !strings.HasPrefix(hash, "0x") {
		hash = "0x" + hash
	}

	return hash, nil
}

// ValidateAmount checks if an amount string is a valid decimal
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &dec, nil
}

// ValidatePrice checks that a price is positive and representable in
// whole minor units.
func ValidatePrice(price string) (decimal.Decimal, error) {
	dec, err := ValidateAmount(price)
	if err != nil {
		return decimal.Zero, err
	}

	if !dec.IsPositive() {
		return decimal.Zero, fmt.Errorf("price must be greater than zero")
	}

	if !dec.Equal(dec.Truncate(MinorUnitExponent)) {
		return decimal.Zero, fmt.Errorf("price %s has more than %d fractional digits", price, MinorUnitExponent)
	}

	return *dec, nil
}
