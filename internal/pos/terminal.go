// Package pos drives the counter: it resolves products and repairs, guards
// stock, mutates the cart and hands completed carts to the sale recorder.
package pos

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/angelmondragon/repairpos/internal/cart"
	"github.com/angelmondragon/repairpos/internal/inventory"
	"github.com/angelmondragon/repairpos/internal/rates"
	"github.com/angelmondragon/repairpos/pkg/db/models"
	"github.com/angelmondragon/repairpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
	"github.com/angelmondragon/repairpos/pkg/logger"
)

type productSnapshotter interface {
	Snapshot(ctx context.Context, id int64) (cart.ProductRef, error)
}

type repairSnapshotter interface {
	Snapshot(ctx context.Context, id int64) (cart.RepairRef, error)
}

type saleRecorder interface {
	Record(ctx context.Context, state cart.State, totals cart.Totals) (*models.Sale, error)
}

type rateReader interface {
	Current() rates.Rate
}

// View is the read model served to the counter UI.
type View struct {
	State  cart.State
	Totals cart.Totals
	Rate   rates.Rate
}

type TerminalParams struct {
	Engine   *cart.Engine
	Rates    rateReader
	Products productSnapshotter
	Repairs  repairSnapshotter
	Sales    saleRecorder
	Logger   *logger.Logger
}

// Terminal serializes counter operations so stock checks and checkout see
// the cart they act on.
type Terminal struct {
	mu       sync.Mutex
	engine   *cart.Engine
	rates    rateReader
	products productSnapshotter
	repairs  repairSnapshotter
	sales    saleRecorder
	logg     *logger.Logger
}

func NewTerminal(params TerminalParams) (*Terminal, error) {
	switch {
	case params.Engine == nil:
		return nil, fmt.Errorf("cart engine required")
	case params.Rates == nil:
		return nil, fmt.Errorf("rate source required")
	case params.Products == nil:
		return nil, fmt.Errorf("product snapshotter required")
	case params.Repairs == nil:
		return nil, fmt.Errorf("repair snapshotter required")
	case params.Sales == nil:
		return nil, fmt.Errorf("sale recorder required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Terminal{
		engine:   params.Engine,
		rates:    params.Rates,
		products: params.Products,
		repairs:  params.Repairs,
		sales:    params.Sales,
		logg:     logg,
	}, nil
}

// View returns the current cart with totals.
func (t *Terminal) View(context.Context) View {
	return t.view()
}

// AddProduct adds quantity units after checking the combined cart quantity
// against stock.
func (t *Terminal) AddProduct(ctx context.Context, productID int64, quantity int) (View, error) {
	if quantity <= 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	ref, err := t.products.Snapshot(ctx, productID)
	if err != nil {
		return View{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	inCart := t.engine.State().ProductQuantity(productID)
	if inCart > math.MaxInt-quantity {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the line limit").
			WithDetails(map[string]any{"product_id": productID, "in_cart": inCart, "quantity": quantity})
	}
	if err := inventory.EnsureStock(ref, inCart+quantity); err != nil {
		return View{}, err
	}
	if err := t.engine.AddProduct(ref, quantity); err != nil {
		return View{}, err
	}
	t.logg.Info(t.logg.WithFields(ctx, map[string]any{"product_id": productID, "quantity": quantity}), "product added to cart")
	return t.view(), nil
}

// UpdateQuantity sets a line's quantity; zero or less removes it. The stock
// captured when the product was added is the ceiling.
func (t *Terminal) UpdateQuantity(ctx context.Context, productID int64, quantity int) (View, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if quantity > 0 {
		line, ok := productLine(t.engine.State(), productID)
		if !ok {
			return View{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d is not in the cart", productID)
		}
		if err := inventory.EnsureStock(line.Product, quantity); err != nil {
			return View{}, err
		}
	}
	t.engine.UpdateQuantity(productID, quantity)
	return t.view(), nil
}

func (t *Terminal) RemoveProduct(_ context.Context, productID int64) View {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.engine.RemoveProduct(productID)
	return t.view()
}

// AddRepair adds a repair balance; the repair's owner becomes the customer.
func (t *Terminal) AddRepair(ctx context.Context, repairID int64) (View, error) {
	ref, err := t.repairs.Snapshot(ctx, repairID)
	if err != nil {
		return View{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.engine.AddRepair(ref); err != nil {
		return View{}, err
	}
	ctx = t.logg.WithCustomerID(ctx, ref.CustomerID)
	t.logg.Info(t.logg.WithField(ctx, "repair_id", repairID), "repair added to cart")
	return t.view(), nil
}

func (t *Terminal) RemoveRepair(_ context.Context, repairID int64) View {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.engine.RemoveRepair(repairID)
	return t.view()
}

func (t *Terminal) SetCurrency(_ context.Context, c enums.Currency) (View, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.engine.SetCurrencyDisplay(c); err != nil {
		return View{}, err
	}
	return t.view(), nil
}

func (t *Terminal) SetCustomer(_ context.Context, customerID *int64) (View, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.engine.SetSelectedCustomer(customerID); err != nil {
		return View{}, err
	}
	return t.view(), nil
}

// Clear abandons the current sale.
func (t *Terminal) Clear(ctx context.Context) View {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.engine.Clear()
	t.logg.Info(ctx, "cart cleared")
	return t.view()
}

// Checkout records the sale and empties the cart. The cart is left untouched
// when recording fails.
func (t *Terminal) Checkout(ctx context.Context) (*models.Sale, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, totals := t.engine.Snapshot()
	if state.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot check out an empty cart")
	}
	sale, err := t.sales.Record(ctx, state, totals)
	if err != nil {
		return nil, err
	}
	t.engine.Clear()

	ctx = t.logg.WithFields(ctx, map[string]any{
		"sale_number": sale.Number.String(),
		"total_usd":   sale.TotalUSD.StringFixed(2),
		"total_local": sale.TotalLocal.StringFixed(2),
		"rate":        sale.ExchangeRate.String(),
	})
	t.logg.Info(ctx, "sale completed")
	return sale, nil
}

func (t *Terminal) view() View {
	state, totals := t.engine.Snapshot()
	return View{State: state, Totals: totals, Rate: t.rates.Current()}
}

func productLine(state cart.State, productID int64) (cart.ProductLine, bool) {
	for _, item := range state.Items {
		if line, ok := item.(cart.ProductLine); ok && line.Product.ID == productID {
			return line, true
		}
	}
	return cart.ProductLine{}, false
}
