// Package rates holds the shop's live USD to local currency exchange rate.
package rates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/angelmondragon/repairpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
	"github.com/angelmondragon/repairpos/pkg/logger"
)

const (
	syncKey            = "sync"
	defaultSyncTimeout = 10 * time.Second
)

// ErrSyncDetached is returned when the caller stops waiting for a sync. The
// fetch keeps running and may still replace the live rate.
var ErrSyncDetached = errors.New("rate sync continues in the background")

// Rate is the live exchange rate and where it came from.
type Rate struct {
	Value      decimal.Decimal
	Provenance enums.RateProvenance
	UpdatedAt  time.Time
}

// Authority fetches the official rate from a remote source.
type Authority interface {
	Fetch(ctx context.Context) (decimal.Decimal, error)
}

// History records every rate the shop accepted.
type History interface {
	Record(ctx context.Context, rate Rate) error
}

type syncRecorder interface {
	SyncOutcome(outcome string)
	SetCurrent(rate float64)
}

// SourceParams configure a Source.
type SourceParams struct {
	Initial   Rate
	Authority Authority
	History   History
	Logger    *logger.Logger
	Metrics   syncRecorder
	Now       func() time.Time
	// SyncTimeout bounds one authority round trip including the history
	// write. Defaults to 10s.
	SyncTimeout time.Duration
}

// Source is safe for concurrent use. Readers never wait on a sync in flight.
type Source struct {
	mu   sync.RWMutex
	rate Rate

	authority Authority
	history   History
	logg      *logger.Logger
	metrics   syncRecorder
	now       func() time.Time
	timeout   time.Duration
	group     singleflight.Group
}

func NewSource(params SourceParams) (*Source, error) {
	if !params.Initial.Value.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial exchange rate must be positive")
	}
	if !params.Initial.Provenance.IsValid() {
		params.Initial.Provenance = enums.RateProvenanceDefault
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	if params.Initial.UpdatedAt.IsZero() {
		params.Initial.UpdatedAt = now().UTC()
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	timeout := params.SyncTimeout
	if timeout <= 0 {
		timeout = defaultSyncTimeout
	}
	s := &Source{
		rate:      params.Initial,
		authority: params.Authority,
		history:   params.History,
		logg:      logg,
		metrics:   params.Metrics,
		now:       now,
		timeout:   timeout,
	}
	s.publish(params.Initial)
	return s, nil
}

// Current returns the live rate with its provenance.
func (s *Source) Current() Rate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// CurrentRate satisfies cart.RateProvider.
func (s *Source) CurrentRate() decimal.Decimal {
	return s.Current().Value
}

// SyncEnabled reports whether an authority is configured.
func (s *Source) SyncEnabled() bool {
	return s.authority != nil
}

// SetManual replaces the live rate with an operator-entered value.
func (s *Source) SetManual(ctx context.Context, value decimal.Decimal) (Rate, error) {
	if !value.IsPositive() {
		return Rate{}, pkgerrors.New(pkgerrors.CodeValidation, "exchange rate must be positive").
			WithDetails(map[string]any{"rate": value.String()})
	}
	rate := Rate{Value: value, Provenance: enums.RateProvenanceManual, UpdatedAt: s.now().UTC()}
	s.set(ctx, rate)
	return rate, nil
}

// Sync asks the authority for the official rate. Concurrent callers share a
// single request that outlives any one caller. On failure the previous rate
// stays in place and the error carries CodeNetwork or CodeUpstream. A caller
// whose ctx ends first gets ErrSyncDetached and the current rate.
func (s *Source) Sync(ctx context.Context) (Rate, error) {
	if s.authority == nil {
		return s.Current(), pkgerrors.New(pkgerrors.CodeDependency, "no rate authority configured")
	}

	ch := s.group.DoChan(syncKey, func() (any, error) {
		syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		value, err := s.authority.Fetch(syncCtx)
		if err != nil {
			if pkgerrors.As(err) == nil {
				err = networkError(err, "fetch exchange rate")
			}
			return nil, err
		}
		if !value.IsPositive() {
			return nil, upstreamError(nil, "authority returned non-positive rate %s", value)
		}
		rate := Rate{Value: value, Provenance: enums.RateProvenanceSynced, UpdatedAt: s.now().UTC()}
		s.set(syncCtx, rate)
		return rate, nil
	})

	select {
	case <-ctx.Done():
		return s.Current(), fmt.Errorf("%w: %w", ErrSyncDetached, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			s.recordOutcome(outcomeFor(res.Err))
			s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(res.Err).Fields()), "rate sync failed, keeping previous rate")
			return s.Current(), res.Err
		}
		s.recordOutcome("success")
		return res.Val.(Rate), nil
	}
}

func (s *Source) set(ctx context.Context, rate Rate) {
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	s.publish(rate)

	ctx = s.logg.WithFields(ctx, map[string]any{
		"rate":       rate.Value.String(),
		"provenance": rate.Provenance,
	})
	s.logg.Info(ctx, "exchange rate updated")

	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, rate); err != nil {
		s.logg.Error(ctx, "record exchange rate history", err)
	}
}

func (s *Source) publish(rate Rate) {
	if s.metrics == nil {
		return
	}
	f, _ := rate.Value.Float64()
	s.metrics.SetCurrent(f)
}

func (s *Source) recordOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.SyncOutcome(outcome)
	}
}
