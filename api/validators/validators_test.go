package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
)

type quantityPayload struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":4,"quantity":0}`))
	var payload quantityPayload
	err := DecodeJSONBody(req, &payload)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	require.Equal(t, "is required", details["quantity"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":4,"quantity":1,"price":3}`))
	var payload quantityPayload
	err := DecodeJSONBody(req, &payload)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodySuccess(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":4,"quantity":2}`))
	var payload quantityPayload
	require.NoError(t, DecodeJSONBody(req, &payload))
	require.Equal(t, int64(4), payload.ProductID)
	require.Equal(t, 2, payload.Quantity)
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20", nil)
	v, err := ParseQueryInt(req, "limit", 10, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 20, v)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	v, err = ParseQueryInt(req, "limit", 10, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 10, v)

	req = httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	_, err = ParseQueryInt(req, "limit", 10, 1, 100)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseIDParam(t *testing.T) {
	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("productId", value)
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := ParseIDParam(withParam("42"), "productId")
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := ParseIDParam(withParam(bad), "productId")
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), bad)
	}
}

type ratePayload struct {
	Rate decimal.Decimal `json:"rate" validate:"required,gt=0"`
}

func TestDecodeJSONBodyValidatesDecimals(t *testing.T) {
	for body, wantErr := range map[string]bool{
		`{"rate":"36.52"}`: false,
		`{"rate":0.5}`:     false,
		`{"rate":"-1"}`:    true,
		`{"rate":"0"}`:     true,
		`{}`:               true,
	} {
		req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
		var payload ratePayload
		err := DecodeJSONBody(req, &payload)
		if wantErr {
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), body)
			continue
		}
		require.NoError(t, err, body)
	}
}

func TestDecodeJSONBodyRequiresBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var payload quantityPayload
	err := DecodeJSONBody(req, &payload)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, "request body is required", pkgerrors.As(err).Message())
}
