package utils

import (
	"fmt"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of decimal places in the donation currency.
const MinorUnitExponent = 2

// FormatAmount renders an amount with the currency precision.
// Example: 12.3456 returns "12.35", 5 returns "5.00".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(MinorUnitExponent)
}

// ToMinorUnits converts a currency-denominated amount to the smallest currency unit, as payment
// processors expect. Non-positive amounts and amounts with sub-cent precision are rejected.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrInvalidAmount, amount.String())
	}
	minor := amount.Shift(MinorUnitExponent)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: amount %s is not representable in minor units", apperrors.ErrInvalidAmount, amount.String())
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: amount %s is too large", apperrors.ErrInvalidAmount, amount.String())
	}
	return minor.IntPart(), nil
}

// FromMinorUnits converts a processor amount back to a currency-denominated decimal.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -MinorUnitExponent)
}
