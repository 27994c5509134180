package cartstore

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/repairpos/internal/cart"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
	"github.com/angelmondragon/repairpos/pkg/logger"
)

const defaultPersistTimeout = 2 * time.Second

type persistFailureRecorder interface {
	PersistFailed()
}

// Persister is a cart.Observer that mirrors every change into a Store. Writes
// happen on the Run goroutine; when several changes arrive before a write
// completes only the latest state is written. A cart back at its defaults
// drops the slot, since restoring a missing slot yields the same cart.
type Persister struct {
	store   Store
	key     string
	timeout time.Duration
	logg    *logger.Logger
	metrics persistFailureRecorder

	mu      sync.Mutex
	pending *cart.State
	wake    chan struct{}
}

func NewPersister(store Store, key string, timeout time.Duration, logg *logger.Logger, metrics persistFailureRecorder) *Persister {
	if timeout <= 0 {
		timeout = defaultPersistTimeout
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Persister{
		store:   store,
		key:     key,
		timeout: timeout,
		logg:    logg,
		metrics: metrics,
		wake:    make(chan struct{}, 1),
	}
}

// CartChanged queues the new state without blocking.
func (p *Persister) CartChanged(change cart.Change) {
	state := change.State
	p.mu.Lock()
	p.pending = &state
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run writes queued states until ctx is cancelled.
func (p *Persister) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.wake:
			p.writePending(ctx)
		}
	}
}

// Flush synchronously writes whatever is still queued. It is meant for
// shutdown, after Run has returned.
func (p *Persister) Flush(ctx context.Context) {
	p.writePending(ctx)
}

func (p *Persister) writePending(ctx context.Context) {
	p.mu.Lock()
	state := p.pending
	p.pending = nil
	p.mu.Unlock()
	if state == nil {
		return
	}

	ctx = p.logg.WithCartSlot(ctx, p.key)
	payload, err := Encode(*state)
	if err != nil {
		p.fail(ctx, "encode cart slot", err)
		return
	}

	// detached so a shutdown cancel does not abort the final write
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if isDefault(*state) {
		if err := p.store.Delete(writeCtx, p.key); err != nil {
			p.fail(ctx, "drop cart slot", err)
			return
		}
		p.logg.Debug(ctx, "cart slot dropped")
		return
	}
	if err := p.store.Save(writeCtx, p.key, payload); err != nil {
		p.fail(ctx, "persist cart slot", err)
		return
	}
	p.logg.Debug(p.logg.WithField(ctx, "items", len(state.Items)), "cart slot persisted")
}

func isDefault(state cart.State) bool {
	empty := cart.Empty()
	return state.IsEmpty() && state.SelectedCustomerID == nil && state.Currency == empty.Currency
}

func (p *Persister) fail(ctx context.Context, msg string, err error) {
	if p.metrics != nil {
		p.metrics.PersistFailed()
	}
	p.logg.Error(p.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), msg, err)
}
