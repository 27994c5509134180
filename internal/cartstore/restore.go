package cartstore

import (
	"context"
	"errors"

	"github.com/angelmondragon/repairpos/internal/cart"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
	"github.com/angelmondragon/repairpos/pkg/logger"
)

type fallbackRecorder interface {
	RestoreFallback(reason string)
}

// Restore loads the saved cart for key. It never fails: a missing slot yields
// an empty cart, and any load, decode or invariant problem is logged and also
// yields an empty cart.
func Restore(ctx context.Context, store Store, key string, logg *logger.Logger, metrics fallbackRecorder) cart.State {
	if logg == nil {
		logg = logger.Nop()
	}
	ctx = logg.WithCartSlot(ctx, key)

	raw, err := store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			logg.Debug(ctx, "no saved cart, starting empty")
			return cart.Empty()
		}
		return fallback(ctx, logg, metrics, "load", err)
	}

	state, err := Decode(raw)
	if err != nil {
		reason := "decode"
		switch {
		case errors.Is(err, ErrSchemaVersion):
			reason = "schema_version"
		case errors.Is(err, ErrInvalidSlot):
			reason = "invalid"
		}
		return fallback(ctx, logg, metrics, reason, err)
	}

	logg.Info(logg.WithField(ctx, "items", len(state.Items)), "cart restored")
	return state
}

func fallback(ctx context.Context, logg *logger.Logger, metrics fallbackRecorder, reason string, err error) cart.State {
	if metrics != nil {
		metrics.RestoreFallback(reason)
	}
	ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
	logg.Warn(logg.WithField(ctx, "reason", reason), "discarding saved cart, starting empty")
	return cart.Empty()
}
