package cart

import (
	"math"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/repairpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
)

// RateProvider exposes the shop's live USD to local currency rate.
type RateProvider interface {
	CurrentRate() decimal.Decimal
}

// RateProviderFunc adapts a plain function to RateProvider.
type RateProviderFunc func() decimal.Decimal

func (f RateProviderFunc) CurrentRate() decimal.Decimal { return f() }

// FixedRate is a RateProvider that always returns the same value.
func FixedRate(rate decimal.Decimal) RateProvider {
	return RateProviderFunc(func() decimal.Decimal { return rate })
}

// Op names the mutation that produced a Change.
type Op string

const (
	OpAddProduct     Op = "add_product"
	OpRemoveProduct  Op = "remove_product"
	OpUpdateQuantity Op = "update_quantity"
	OpAddRepair      Op = "add_repair"
	OpRemoveRepair   Op = "remove_repair"
	OpClear          Op = "clear"
	OpSetCurrency    Op = "set_currency"
	OpSetCustomer    Op = "set_customer"
)

// Change is published after every mutation that altered the cart.
type Change struct {
	Op    Op
	State State
}

// Observer receives cart changes. CartChanged runs while the engine lock is
// held, so implementations must return quickly and must not call back into
// the engine.
type Observer interface {
	CartChanged(Change)
}

type ObserverFunc func(Change)

func (f ObserverFunc) CartChanged(c Change) { f(c) }

// Engine owns the cart aggregate and enforces its invariants.
type Engine struct {
	mu        sync.Mutex
	rates     RateProvider
	state     State
	observers []Observer
}

// NewEngine builds an engine starting from initial, which must already
// satisfy State.Validate. Use Empty() for a new session.
func NewEngine(rates RateProvider, initial State, observers ...Observer) (*Engine, error) {
	if rates == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "rate provider required")
	}
	if err := initial.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid initial cart state")
	}
	return &Engine{
		rates:     rates,
		state:     initial.Clone(),
		observers: observers,
	}, nil
}

// Subscribe registers an observer for subsequent changes.
func (e *Engine) Subscribe(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// AddProduct merges quantity into an existing line for the product or
// appends a new one. The first line of an empty cart freezes the live rate.
func (e *Engine) AddProduct(p ProductRef, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"product_id": p.ID, "quantity": quantity})
	}
	if err := p.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.freeze(); err != nil {
		return err
	}
	if idx := e.indexOf(enums.CartItemKindProduct, p.ID); idx >= 0 {
		line := e.state.Items[idx].(ProductLine)
		if line.Quantity > math.MaxInt-quantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the line limit").
				WithDetails(map[string]any{"product_id": p.ID, "in_cart": line.Quantity, "quantity": quantity})
		}
		line.Quantity += quantity
		e.state.Items[idx] = line
	} else {
		e.state.Items = append(e.state.Items, ProductLine{Product: p, Quantity: quantity})
	}
	e.publish(OpAddProduct)
	return nil
}

// RemoveProduct deletes the product line if present.
func (e *Engine) RemoveProduct(productID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remove(OpRemoveProduct, enums.CartItemKindProduct, productID)
}

// UpdateQuantity sets a product line's quantity exactly. A quantity of zero
// or less removes the line. Absent lines are left alone.
func (e *Engine) UpdateQuantity(productID int64, quantity int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		return e.remove(OpUpdateQuantity, enums.CartItemKindProduct, productID)
	}
	idx := e.indexOf(enums.CartItemKindProduct, productID)
	if idx < 0 {
		return false
	}
	line := e.state.Items[idx].(ProductLine)
	if line.Quantity == quantity {
		return true
	}
	line.Quantity = quantity
	e.state.Items[idx] = line
	e.publish(OpUpdateQuantity)
	return true
}

// AddRepair appends a repair balance and makes its owner the selected
// customer. Adding a repair already in the cart does nothing.
func (e *Engine) AddRepair(r RepairRef) error {
	if err := r.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexOf(enums.CartItemKindRepair, r.ID) >= 0 {
		return nil
	}
	if err := e.freeze(); err != nil {
		return err
	}
	e.state.Items = append(e.state.Items, RepairLine{Repair: r})
	customerID := r.CustomerID
	e.state.SelectedCustomerID = &customerID
	e.publish(OpAddRepair)
	return nil
}

// RemoveRepair deletes the repair line if present. The selected customer is
// kept.
func (e *Engine) RemoveRepair(repairID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remove(OpRemoveRepair, enums.CartItemKindRepair, repairID)
}

// Clear returns the cart to its empty state. The currency preference is kept.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Items = []Item{}
	e.state.ExchangeRateSnapshot = decimal.Zero
	e.state.SelectedCustomerID = nil
	e.publish(OpClear)
}

// SetCurrencyDisplay switches the currency totals are presented in.
func (e *Engine) SetCurrencyDisplay(c enums.Currency) error {
	if !c.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported currency %q", c)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Currency == c {
		return nil
	}
	e.state.Currency = c
	e.publish(OpSetCurrency)
	return nil
}

// SetSelectedCustomer overrides the customer; nil unsets it.
func (e *Engine) SetSelectedCustomer(customerID *int64) error {
	if customerID != nil && *customerID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if customerID == nil {
		e.state.SelectedCustomerID = nil
	} else {
		id := *customerID
		e.state.SelectedCustomerID = &id
	}
	e.publish(OpSetCustomer)
	return nil
}

// State returns a copy of the current aggregate.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Snapshot returns the state and its totals read under one lock.
func (e *Engine) Snapshot() (State, Totals) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone(), Calculate(e.state.Items, e.state.ExchangeRateSnapshot, e.rates)
}

// Totals computes the cart totals against the frozen rate.
func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Calculate(e.state.Items, e.state.ExchangeRateSnapshot, e.rates)
}

func (e *Engine) freeze() error {
	if !e.state.IsEmpty() {
		return nil
	}
	rate := FreezeIfNeeded(e.state.ExchangeRateSnapshot, e.rates.CurrentRate())
	if !rate.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no exchange rate available to price the cart").
			WithDetails(map[string]any{"rate": rate.String()})
	}
	e.state.ExchangeRateSnapshot = rate
	return nil
}

func (e *Engine) indexOf(kind enums.CartItemKind, id int64) int {
	for i, item := range e.state.Items {
		if item.Kind() == kind && item.ID() == id {
			return i
		}
	}
	return -1
}

func (e *Engine) remove(op Op, kind enums.CartItemKind, id int64) bool {
	idx := e.indexOf(kind, id)
	if idx < 0 {
		return false
	}
	e.state.Items = append(e.state.Items[:idx], e.state.Items[idx+1:]...)
	if e.state.IsEmpty() {
		e.state.ExchangeRateSnapshot = decimal.Zero
	}
	e.publish(op)
	return true
}

func (e *Engine) publish(op Op) {
	if len(e.observers) == 0 {
		return
	}
	change := Change{Op: op, State: e.state.Clone()}
	for _, o := range e.observers {
		o.CartChanged(change)
	}
}
