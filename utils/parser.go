package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of fractional digits kept by usage
// accounting (cents).
const MinorUnitExponent = 2

// FormatTokenAmount converts a raw on-chain integer into token units.
// The conversion is exact: 20000 with 6 decimals is 0.02.
func FormatTokenAmount(raw *big.Int, decimals int32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -decimals)
}

// ToMinorUnits converts an amount to integer minor units (cents).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(MinorUnitExponent).Truncate(0).IntPart()
}

// FormatMinorUnits renders minor units as a fixed two-digit decimal.
func FormatMinorUnits(minor int64) string {
	return decimal.New(minor, -MinorUnitExponent).StringFixed(MinorUnitExponent)
}
