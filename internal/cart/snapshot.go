package cart

import "github.com/shopspring/decimal"

// FreezeIfNeeded returns live when the cart has no frozen rate yet and the
// current snapshot otherwise. A zero snapshot means the cart is empty.
func FreezeIfNeeded(current, live decimal.Decimal) decimal.Decimal {
	if current.IsZero() {
		return live
	}
	return current
}
