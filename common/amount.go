package common

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ToUSDCUnits converts a human USDC amount into the token's smallest unit,
// rounding to 6 decimal places first.
func ToUSDCUnits(amount decimal.Decimal) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, NewValidationError("amount must not be negative, got %s", amount.String())
	}
	return amount.Round(USDCDecimals).Shift(USDCDecimals).BigInt(), nil
}

// ParseUSDCAmount reads a human USDC amount typed by a user. The amount must
// be positive and is rounded to 6 decimal places.
func ParseUSDCAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, NewValidationError("invalid amount %q", s)
	}
	if !d.IsPositive() {
		return decimal.Zero, NewValidationError("amount must be positive, got %s", d.String())
	}
	return d.Round(USDCDecimals), nil
}

// FromUSDCUnits renders smallest units back as a USDC amount.
func FromUSDCUnits(units *big.Int) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -USDCDecimals)
}
