package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/repairpos/api/responses"
	"github.com/angelmondragon/repairpos/api/validators"
	"github.com/angelmondragon/repairpos/internal/pos"
	"github.com/angelmondragon/repairpos/pkg/db/models"
	"github.com/angelmondragon/repairpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
	"github.com/angelmondragon/repairpos/pkg/logger"
)

// CartTerminal is the counter surface the cart endpoints drive.
type CartTerminal interface {
	View(ctx context.Context) pos.View
	AddProduct(ctx context.Context, productID int64, quantity int) (pos.View, error)
	UpdateQuantity(ctx context.Context, productID int64, quantity int) (pos.View, error)
	RemoveProduct(ctx context.Context, productID int64) pos.View
	AddRepair(ctx context.Context, repairID int64) (pos.View, error)
	RemoveRepair(ctx context.Context, repairID int64) pos.View
	SetCurrency(ctx context.Context, c enums.Currency) (pos.View, error)
	SetCustomer(ctx context.Context, customerID *int64) (pos.View, error)
	Clear(ctx context.Context) pos.View
	Checkout(ctx context.Context) (*models.Sale, error)
}

type addProductRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,min=1,max=9999"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=9999"`
}

type addRepairRequest struct {
	RepairID int64 `json:"repair_id" validate:"required,gt=0"`
}

type setCurrencyRequest struct {
	Currency string `json:"currency" validate:"required,oneof=USD LOCAL"`
}

type setCustomerRequest struct {
	CustomerID *int64 `json:"customer_id" validate:"omitempty,gt=0"`
}

func CartFetch(term CartTerminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(term.View(r.Context())))
	}
}

func CartClear(term CartTerminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(term.Clear(r.Context())))
	}
}

// CartAddProduct adds units of an inventory product, merging into an
// existing line.
func CartAddProduct(term CartTerminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := term.AddProduct(r.Context(), payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

// CartUpdateQuantity replaces a product line's quantity. Zero or a negative
// quantity removes the line.
func CartUpdateQuantity(term CartTerminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := term.UpdateQuantity(r.Context(), productID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

func CartRemoveProduct(term CartTerminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(term.RemoveProduct(r.Context(), productID)))
	}
}

func CartAddRepair(term CartTerminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addRepairRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := term.AddRepair(r.Context(), payload.RepairID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

func CartRemoveRepair(term CartTerminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repairID, err := validators.ParseIDParam(r, "repairId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(term.RemoveRepair(r.Context(), repairID)))
	}
}

func CartSetCurrency(term CartTerminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setCurrencyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		currency, err := enums.ParseCurrency(payload.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
			return
		}
		view, err := term.SetCurrency(r.Context(), currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

// CartSetCustomer attaches the sale to a customer; a null id clears it.
func CartSetCustomer(term CartTerminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := term.SetCustomer(r.Context(), payload.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

func CartCheckout(term CartTerminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sale, err := term.Checkout(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newSaleResponse(sale))
	}
}
