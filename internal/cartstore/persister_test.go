package cartstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/repairpos/internal/cart"
	"github.com/angelmondragon/repairpos/pkg/enums"
	"github.com/angelmondragon/repairpos/pkg/logger"
)

type failureCounter struct {
	mu sync.Mutex
	n  int
}

func (f *failureCounter) PersistFailed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
}

func (f *failureCounter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

func TestPersisterMirrorsEngine(t *testing.T) {
	store := newMemoryStore()
	persister := NewPersister(store, "pos-cart", time.Second, logger.Nop(), nil)

	engine, err := cart.NewEngine(cart.FixedRate(decimal.NewFromInt(40)), cart.Empty(), persister)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = persister.Run(ctx)
		close(done)
	}()

	require.NoError(t, engine.AddProduct(cart.ProductRef{ID: 1, Name: "cable", PriceUSD: decimal.NewFromInt(10)}, 2))
	require.NoError(t, engine.AddRepair(cart.RepairRef{ID: 9, CustomerID: 4, RemainingUSD: decimal.NewFromInt(15)}))

	require.Eventually(t, func() bool {
		state := Restore(context.Background(), store, "pos-cart", nil, nil)
		return len(state.Items) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	restored := Restore(context.Background(), store, "pos-cart", nil, nil)
	again, err := cart.NewEngine(cart.FixedRate(decimal.NewFromInt(99)), restored)
	require.NoError(t, err)
	assert.Equal(t, "1400.00", again.Totals().TotalLocal.StringFixed(2))
}

func TestPersisterCoalescesToLatest(t *testing.T) {
	store := newMemoryStore()
	persister := NewPersister(store, "pos-cart", time.Second, nil, nil)

	engine, err := cart.NewEngine(cart.FixedRate(decimal.NewFromInt(40)), cart.Empty(), persister)
	require.NoError(t, err)
	for i := 1; i <= 5; i++ {
		require.NoError(t, engine.AddProduct(cart.ProductRef{ID: int64(i), Name: "p", PriceUSD: decimal.NewFromInt(1)}, 1))
	}

	persister.Flush(context.Background())
	persister.Flush(context.Background())

	assert.Equal(t, 1, store.saves)
	state := Restore(context.Background(), store, "pos-cart", nil, nil)
	assert.Len(t, state.Items, 5)
}

func TestPersisterFailureIsRecordedNotFatal(t *testing.T) {
	store := newMemoryStore()
	store.saveErr = errors.New("disk full")
	counter := &failureCounter{}
	persister := NewPersister(store, "pos-cart", 0, logger.Nop(), counter)

	persister.CartChanged(cart.Change{Op: cart.OpSetCurrency, State: localEmpty()})
	persister.Flush(context.Background())

	assert.Equal(t, 1, counter.count())
}

func TestPersisterFlushesAfterCancel(t *testing.T) {
	store := newMemoryStore()
	persister := NewPersister(store, "pos-cart", time.Second, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	persister.CartChanged(cart.Change{Op: cart.OpSetCurrency, State: localEmpty()})
	persister.Flush(ctx)

	_, err := store.Load(context.Background(), "pos-cart")
	assert.NoError(t, err)
}

func TestPersisterDropsSlotForDefaultCart(t *testing.T) {
	store := newMemoryStore()
	persister := NewPersister(store, "pos-cart", time.Second, nil, nil)

	engine, err := cart.NewEngine(cart.FixedRate(decimal.NewFromInt(40)), cart.Empty(), persister)
	require.NoError(t, err)
	require.NoError(t, engine.AddProduct(cart.ProductRef{ID: 1, Name: "cable", PriceUSD: decimal.NewFromInt(10)}, 1))
	persister.Flush(context.Background())
	_, err = store.Load(context.Background(), "pos-cart")
	require.NoError(t, err)

	engine.Clear()
	persister.Flush(context.Background())
	_, err = store.Load(context.Background(), "pos-cart")
	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.Equal(t, 1, store.deletes)

	restored := Restore(context.Background(), store, "pos-cart", nil, nil)
	assert.Equal(t, cart.Empty(), restored)
}

func TestPersisterKeepsSlotWhenClearKeepsCurrency(t *testing.T) {
	store := newMemoryStore()
	persister := NewPersister(store, "pos-cart", time.Second, nil, nil)

	engine, err := cart.NewEngine(cart.FixedRate(decimal.NewFromInt(40)), cart.Empty(), persister)
	require.NoError(t, err)
	require.NoError(t, engine.SetCurrencyDisplay(enums.CurrencyLocal))
	require.NoError(t, engine.AddProduct(cart.ProductRef{ID: 1, Name: "cable", PriceUSD: decimal.NewFromInt(10)}, 1))
	engine.Clear()
	persister.Flush(context.Background())

	assert.Zero(t, store.deletes)
	restored := Restore(context.Background(), store, "pos-cart", nil, nil)
	assert.True(t, restored.IsEmpty())
	assert.Equal(t, enums.CurrencyLocal, restored.Currency)
}

func localEmpty() cart.State {
	state := cart.Empty()
	state.Currency = enums.CurrencyLocal
	return state
}
