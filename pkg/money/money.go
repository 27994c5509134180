// Package money holds the display-time rounding rules for USD and local
// currency amounts. Amounts are accumulated unrounded and only pass through
// these helpers when shown or recorded.
package money

import "github.com/shopspring/decimal"

const displayPlaces = 2

var hundred = decimal.NewFromInt(100)

// Display rounds an amount half-away-from-zero to two decimal places.
func Display(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(displayPlaces)
}

// Format renders an amount with exactly two decimal places.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(displayPlaces)
}

// Cents converts an amount to whole cents after display rounding.
func Cents(amount decimal.Decimal) int64 {
	return Display(amount).Mul(hundred).IntPart()
}

// Convert applies an exchange rate to a USD amount without rounding.
func Convert(usd, rate decimal.Decimal) decimal.Decimal {
	return usd.Mul(rate)
}
