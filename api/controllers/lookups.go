package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/repairpos/api/responses"
	"github.com/angelmondragon/repairpos/api/validators"
	"github.com/angelmondragon/repairpos/internal/cart"
	"github.com/angelmondragon/repairpos/pkg/db/models"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
	"github.com/angelmondragon/repairpos/pkg/logger"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	maxSearchQueryLen  = 64
)

type ProductSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]cart.ProductRef, error)
}

type CollectableRepairs interface {
	Collectable(ctx context.Context, customerID int64) ([]cart.RepairRef, error)
}

type SaleFinder interface {
	FindByNumber(ctx context.Context, number uuid.UUID) (*models.Sale, error)
}

// ProductsSearch backs the counter's product picker.
func ProductsSearch(svc ProductSearcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", defaultSearchLimit, 1, maxSearchLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if len(query) > maxSearchQueryLen {
			query = query[:maxSearchQueryLen]
		}
		refs, err := svc.Search(r.Context(), query, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]productResponse, 0, len(refs))
		for _, ref := range refs {
			out = append(out, newProductResponse(ref))
		}
		responses.WriteSuccess(w, out)
	}
}

// CustomerRepairs lists the repairs with an outstanding balance.
func CustomerRepairs(svc CollectableRepairs, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.ParseIDParam(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		refs, err := svc.Collectable(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]repairResponse, 0, len(refs))
		for _, ref := range refs {
			out = append(out, newRepairResponse(ref))
		}
		responses.WriteSuccess(w, out)
	}
}

func SaleFetch(repo SaleFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "number")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale number"))
			return
		}
		sale, err := repo.FindByNumber(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSaleResponse(sale))
	}
}
