package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/repairpos/pkg/enums"
)

// State is the cart aggregate: ordered lines, the frozen exchange rate, the
// display currency and the customer the sale belongs to.
type State struct {
	Items                []Item
	ExchangeRateSnapshot decimal.Decimal
	Currency             enums.Currency
	SelectedCustomerID   *int64
}

// Empty returns the state of a freshly opened cart.
func Empty() State {
	return State{
		Items:                []Item{},
		ExchangeRateSnapshot: decimal.Zero,
		Currency:             enums.CurrencyUSD,
	}
}

// Clone returns a deep copy safe to hand outside the engine.
func (s State) Clone() State {
	out := s
	out.Items = make([]Item, len(s.Items))
	copy(out.Items, s.Items)
	if s.SelectedCustomerID != nil {
		id := *s.SelectedCustomerID
		out.SelectedCustomerID = &id
	}
	return out
}

func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// ProductQuantity reports how many units of a product are already in the cart.
func (s State) ProductQuantity(productID int64) int {
	for _, item := range s.Items {
		if line, ok := item.(ProductLine); ok && line.Product.ID == productID {
			return line.Quantity
		}
	}
	return 0
}

// HasRepair reports whether the repair is already being collected.
func (s State) HasRepair(repairID int64) bool {
	for _, item := range s.Items {
		if line, ok := item.(RepairLine); ok && line.Repair.ID == repairID {
			return true
		}
	}
	return false
}

// Validate checks every aggregate invariant and reports all violations.
func (s State) Validate() error {
	var err error
	if !s.Currency.IsValid() {
		err = multierr.Append(err, fmt.Errorf("invalid currency %q", s.Currency))
	}
	if s.ExchangeRateSnapshot.IsNegative() {
		err = multierr.Append(err, fmt.Errorf("exchange rate snapshot %s is negative", s.ExchangeRateSnapshot))
	}
	if s.ExchangeRateSnapshot.IsZero() != s.IsEmpty() {
		err = multierr.Append(err, fmt.Errorf("exchange rate snapshot %s inconsistent with %d items", s.ExchangeRateSnapshot, len(s.Items)))
	}
	if s.SelectedCustomerID != nil && *s.SelectedCustomerID <= 0 {
		err = multierr.Append(err, fmt.Errorf("selected customer id %d must be positive", *s.SelectedCustomerID))
	}

	products := make(map[int64]struct{})
	repairs := make(map[int64]struct{})
	for i, item := range s.Items {
		switch line := item.(type) {
		case ProductLine:
			if _, dup := products[line.Product.ID]; dup {
				err = multierr.Append(err, fmt.Errorf("item %d: duplicate product %d", i, line.Product.ID))
			}
			products[line.Product.ID] = struct{}{}
			if line.Quantity < 1 {
				err = multierr.Append(err, fmt.Errorf("item %d: quantity %d must be at least 1", i, line.Quantity))
			}
			if verr := line.Product.Validate(); verr != nil {
				err = multierr.Append(err, fmt.Errorf("item %d: %w", i, verr))
			}
		case RepairLine:
			if _, dup := repairs[line.Repair.ID]; dup {
				err = multierr.Append(err, fmt.Errorf("item %d: duplicate repair %d", i, line.Repair.ID))
			}
			repairs[line.Repair.ID] = struct{}{}
			if verr := line.Repair.Validate(); verr != nil {
				err = multierr.Append(err, fmt.Errorf("item %d: %w", i, verr))
			}
		case nil:
			err = multierr.Append(err, fmt.Errorf("item %d: missing", i))
		default:
			panic(unknownItem(item))
		}
	}
	return err
}
