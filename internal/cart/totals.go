package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/repairpos/pkg/enums"
	"github.com/angelmondragon/repairpos/pkg/money"
)

// Totals are unrounded; round through Display or pkg/money when presenting.
type Totals struct {
	ProductSubtotalUSD decimal.Decimal
	RepairSubtotalUSD  decimal.Decimal
	TotalUSD           decimal.Decimal
	EffectiveRate      decimal.Decimal
	TotalLocal         decimal.Decimal
}

// Calculate sums the cart lines and converts the total with the frozen
// snapshot, falling back to the live rate when nothing is frozen.
func Calculate(items []Item, snapshot decimal.Decimal, live RateProvider) Totals {
	t := Totals{
		ProductSubtotalUSD: decimal.Zero,
		RepairSubtotalUSD:  decimal.Zero,
	}
	for _, item := range items {
		switch line := item.(type) {
		case ProductLine:
			t.ProductSubtotalUSD = t.ProductSubtotalUSD.Add(line.TotalUSD())
		case RepairLine:
			t.RepairSubtotalUSD = t.RepairSubtotalUSD.Add(line.TotalUSD())
		default:
			panic(unknownItem(item))
		}
	}
	t.TotalUSD = t.ProductSubtotalUSD.Add(t.RepairSubtotalUSD)

	t.EffectiveRate = snapshot
	if t.EffectiveRate.IsZero() {
		t.EffectiveRate = decimal.Zero
		if live != nil {
			t.EffectiveRate = live.CurrentRate()
		}
	}
	t.TotalLocal = money.Convert(t.TotalUSD, t.EffectiveRate)
	return t
}

// Display returns the rounded grand total in the requested currency.
func (t Totals) Display(c enums.Currency) decimal.Decimal {
	if c == enums.CurrencyLocal {
		return money.Display(t.TotalLocal)
	}
	return money.Display(t.TotalUSD)
}
