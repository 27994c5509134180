package pos

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/repairpos/internal/cart"
	"github.com/angelmondragon/repairpos/internal/rates"
	"github.com/angelmondragon/repairpos/pkg/db/models"
	"github.com/angelmondragon/repairpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
	"github.com/angelmondragon/repairpos/pkg/money"
)

type stubProducts map[int64]cart.ProductRef

func (s stubProducts) Snapshot(_ context.Context, id int64) (cart.ProductRef, error) {
	ref, ok := s[id]
	if !ok {
		return cart.ProductRef{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", id)
	}
	return ref, nil
}

type stubRepairs map[int64]cart.RepairRef

func (s stubRepairs) Snapshot(_ context.Context, id int64) (cart.RepairRef, error) {
	ref, ok := s[id]
	if !ok {
		return cart.RepairRef{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "repair %d not found", id)
	}
	return ref, nil
}

type stubSales struct {
	err      error
	recorded []cart.State
}

func (s *stubSales) Record(_ context.Context, state cart.State, totals cart.Totals) (*models.Sale, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.recorded = append(s.recorded, state)
	return &models.Sale{
		Number:       uuid.New(),
		ExchangeRate: totals.EffectiveRate,
		TotalUSD:     money.Display(totals.TotalUSD),
		TotalLocal:   money.Display(totals.TotalLocal),
	}, nil
}

type countingRecorder struct {
	ops []string
}

func (c *countingRecorder) Mutation(op string, _ int) { c.ops = append(c.ops, op) }

func newTerminal(t *testing.T, sales *stubSales) (*Terminal, *rates.Source) {
	t.Helper()
	src, err := rates.NewSource(rates.SourceParams{Initial: rates.Rate{Value: decimal.NewFromInt(40)}})
	require.NoError(t, err)
	engine, err := cart.NewEngine(src, cart.Empty())
	require.NoError(t, err)

	term, err := NewTerminal(TerminalParams{
		Engine: engine,
		Rates:  src,
		Products: stubProducts{
			1: {ID: 1, Name: "USB-C cable", PriceUSD: decimal.NewFromInt(10), Stock: 3},
			2: {ID: 2, Name: "Case", PriceUSD: decimal.NewFromInt(5), Stock: 10},
		},
		Repairs: stubRepairs{
			9: {ID: 9, CustomerID: 4, CustomerName: "Ana", RemainingUSD: decimal.NewFromInt(15)},
		},
		Sales: sales,
	})
	require.NoError(t, err)
	return term, src
}

func TestAddProductChecksCombinedStock(t *testing.T) {
	term, _ := newTerminal(t, &stubSales{})
	ctx := context.Background()

	_, err := term.AddProduct(ctx, 1, 2)
	require.NoError(t, err)

	_, err = term.AddProduct(ctx, 1, 2)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	view, err := term.AddProduct(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, view.State.ProductQuantity(1))
}

func TestAddProductErrors(t *testing.T) {
	term, _ := newTerminal(t, &stubSales{})
	_, err := term.AddProduct(context.Background(), 404, 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = term.AddProduct(context.Background(), 1, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAddProductRejectsQuantityOverflow(t *testing.T) {
	term, _ := newTerminal(t, &stubSales{})
	ctx := context.Background()
	_, err := term.AddProduct(ctx, 2, 1)
	require.NoError(t, err)

	_, err = term.AddProduct(ctx, 2, math.MaxInt)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	view := term.View(ctx)
	assert.Equal(t, 1, view.State.ProductQuantity(2))
	assert.True(t, view.Totals.TotalUSD.Equal(decimal.NewFromInt(5)))
	require.NoError(t, view.State.Validate())
}

func TestUpdateQuantity(t *testing.T) {
	term, _ := newTerminal(t, &stubSales{})
	ctx := context.Background()
	_, err := term.AddProduct(ctx, 1, 1)
	require.NoError(t, err)

	_, err = term.UpdateQuantity(ctx, 1, 4)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	view, err := term.UpdateQuantity(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, view.State.ProductQuantity(1))

	_, err = term.UpdateQuantity(ctx, 2, 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	view, err = term.UpdateQuantity(ctx, 1, 0)
	require.NoError(t, err)
	assert.True(t, view.State.IsEmpty())
	assert.True(t, view.State.ExchangeRateSnapshot.IsZero())
}

func TestViewKeepsFrozenRateAfterRateChange(t *testing.T) {
	term, src := newTerminal(t, &stubSales{})
	ctx := context.Background()

	_, err := term.AddProduct(ctx, 1, 2)
	require.NoError(t, err)
	_, err = term.AddRepair(ctx, 9)
	require.NoError(t, err)

	_, err = src.SetManual(ctx, decimal.NewFromInt(50))
	require.NoError(t, err)

	view := term.View(ctx)
	assert.Equal(t, "35.00", view.Totals.TotalUSD.StringFixed(2))
	assert.Equal(t, "1400.00", view.Totals.TotalLocal.StringFixed(2))
	assert.True(t, view.Rate.Value.Equal(decimal.NewFromInt(50)))
	require.NotNil(t, view.State.SelectedCustomerID)
	assert.Equal(t, int64(4), *view.State.SelectedCustomerID)
}

func TestCheckoutClearsCart(t *testing.T) {
	sales := &stubSales{}
	term, _ := newTerminal(t, sales)
	ctx := context.Background()

	_, err := term.Checkout(ctx)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = term.AddRepair(ctx, 9)
	require.NoError(t, err)
	sale, err := term.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "600.00", sale.TotalLocal.StringFixed(2))

	view := term.View(ctx)
	assert.True(t, view.State.IsEmpty())
	assert.Nil(t, view.State.SelectedCustomerID)
	assert.Len(t, sales.recorded, 1)
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	term, _ := newTerminal(t, &stubSales{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("db down"), "insert sale")})
	ctx := context.Background()
	_, err := term.AddProduct(ctx, 2, 1)
	require.NoError(t, err)

	_, err = term.Checkout(ctx)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Len(t, term.View(ctx).State.Items, 1)
}

func TestCurrencyAndCustomer(t *testing.T) {
	term, _ := newTerminal(t, &stubSales{})
	ctx := context.Background()

	view, err := term.SetCurrency(ctx, enums.CurrencyLocal)
	require.NoError(t, err)
	assert.Equal(t, enums.CurrencyLocal, view.State.Currency)

	id := int64(12)
	view, err = term.SetCustomer(ctx, &id)
	require.NoError(t, err)
	assert.Equal(t, int64(12), *view.State.SelectedCustomerID)

	view = term.Clear(ctx)
	assert.Nil(t, view.State.SelectedCustomerID)
	assert.Equal(t, enums.CurrencyLocal, view.State.Currency)
}

func TestMetricsObserver(t *testing.T) {
	rec := &countingRecorder{}
	engine, err := cart.NewEngine(cart.FixedRate(decimal.NewFromInt(40)), cart.Empty(), MetricsObserver(rec))
	require.NoError(t, err)
	require.NoError(t, engine.AddProduct(cart.ProductRef{ID: 1, Name: "x", PriceUSD: decimal.NewFromInt(1)}, 1))
	engine.Clear()
	assert.Equal(t, []string{"add_product", "clear"}, rec.ops)
}

func TestNewTerminalRequiresDeps(t *testing.T) {
	_, err := NewTerminal(TerminalParams{})
	assert.Error(t, err)
}
