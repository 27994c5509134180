package enums

import "fmt"

// Currency selects which denomination the cart presents totals in. Amounts
// are always held in USD; LOCAL is derived through the frozen exchange rate.
type Currency string

const (
	CurrencyUSD   Currency = "USD"
	CurrencyLocal Currency = "LOCAL"
)

var validCurrencies = []Currency{
	CurrencyUSD,
	CurrencyLocal,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency converts a raw string into a Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
