package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/repairpos/api/responses"
	"github.com/angelmondragon/repairpos/api/validators"
	"github.com/angelmondragon/repairpos/internal/rates"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
	"github.com/angelmondragon/repairpos/pkg/logger"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 500
)

// RateSource is the live exchange rate surface.
type RateSource interface {
	Current() rates.Rate
	SetManual(ctx context.Context, value decimal.Decimal) (rates.Rate, error)
	Sync(ctx context.Context) (rates.Rate, error)
}

// RateHistory lists previously accepted rates, newest first.
type RateHistory interface {
	List(ctx context.Context, limit int) ([]rates.Rate, error)
}

type setRateRequest struct {
	Rate decimal.Decimal `json:"rate" validate:"required,gt=0"`
}

func RatesCurrent(src RateSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newRateResponse(src.Current()))
	}
}

// RatesSetManual overrides the live rate. Carts that already froze a rate
// keep it.
func RatesSetManual(src RateSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setRateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rate, err := src.SetManual(r.Context(), payload.Rate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newRateResponse(rate))
	}
}

// RatesSync refreshes from the authority. A failed refresh still answers 200
// with the retained rate and a warning so the counter keeps selling.
func RatesSync(src RateSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rate, err := src.Sync(r.Context())
		if err != nil {
			responses.WriteSuccessWithWarning(w, newRateResponse(rate), syncWarning(err))
			return
		}
		responses.WriteSuccess(w, newRateResponse(rate))
	}
}

func RatesHistory(history RateHistory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", defaultHistoryLimit, 1, maxHistoryLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := history.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]rateResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, newRateResponse(row))
		}
		responses.WriteSuccess(w, out)
	}
}

func syncWarning(err error) string {
	if errors.Is(err, rates.ErrSyncDetached) {
		return "rate sync still in progress"
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return pkgerrors.MetadataFor(pkgerrors.CodeNetwork).PublicMessage
	}
	if typed.Code() == pkgerrors.CodeDependency {
		return typed.Message()
	}
	return pkgerrors.MetadataFor(typed.Code()).PublicMessage
}
