package controllers

import (
	"time"

	"github.com/angelmondragon/repairpos/internal/cart"
	"github.com/angelmondragon/repairpos/internal/pos"
	"github.com/angelmondragon/repairpos/internal/rates"
	"github.com/angelmondragon/repairpos/pkg/db/models"
	"github.com/angelmondragon/repairpos/pkg/money"
)

type cartItemResponse struct {
	Kind         string `json:"kind"`
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku,omitempty"`
	Quantity     int    `json:"quantity"`
	UnitPriceUSD string `json:"unit_price_usd"`
	LineTotalUSD string `json:"line_total_usd"`
	CustomerID   *int64 `json:"customer_id,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
	Description  string `json:"description,omitempty"`
}

type cartTotalsResponse struct {
	ProductSubtotalUSD string `json:"product_subtotal_usd"`
	RepairSubtotalUSD  string `json:"repair_subtotal_usd"`
	TotalUSD           string `json:"total_usd"`
	EffectiveRate      string `json:"effective_rate"`
	TotalLocal         string `json:"total_local"`
	DisplayTotal       string `json:"display_total"`
}

type rateResponse struct {
	Rate       string    `json:"rate"`
	Provenance string    `json:"provenance"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type cartResponse struct {
	Items                []cartItemResponse `json:"items"`
	ExchangeRateSnapshot string             `json:"exchange_rate_snapshot"`
	Currency             string             `json:"currency"`
	SelectedCustomerID   *int64             `json:"selected_customer_id"`
	Totals               cartTotalsResponse `json:"totals"`
	LiveRate             rateResponse       `json:"live_rate"`
}

func newCartResponse(v pos.View) cartResponse {
	items := make([]cartItemResponse, 0, len(v.State.Items))
	for _, item := range v.State.Items {
		items = append(items, newCartItemResponse(item))
	}
	return cartResponse{
		Items:                items,
		ExchangeRateSnapshot: v.State.ExchangeRateSnapshot.String(),
		Currency:             v.State.Currency.String(),
		SelectedCustomerID:   v.State.SelectedCustomerID,
		Totals: cartTotalsResponse{
			ProductSubtotalUSD: money.Format(v.Totals.ProductSubtotalUSD),
			RepairSubtotalUSD:  money.Format(v.Totals.RepairSubtotalUSD),
			TotalUSD:           money.Format(v.Totals.TotalUSD),
			EffectiveRate:      v.Totals.EffectiveRate.String(),
			TotalLocal:         money.Format(v.Totals.TotalLocal),
			DisplayTotal:       money.Format(v.Totals.Display(v.State.Currency)),
		},
		LiveRate: newRateResponse(v.Rate),
	}
}

func newCartItemResponse(item cart.Item) cartItemResponse {
	switch line := item.(type) {
	case cart.ProductLine:
		return cartItemResponse{
			Kind:         line.Kind().String(),
			ID:           line.Product.ID,
			Name:         line.Product.Name,
			SKU:          line.Product.SKU,
			Quantity:     line.Quantity,
			UnitPriceUSD: money.Format(line.Product.PriceUSD),
			LineTotalUSD: money.Format(line.TotalUSD()),
		}
	case cart.RepairLine:
		customerID := line.Repair.CustomerID
		return cartItemResponse{
			Kind:         line.Kind().String(),
			ID:           line.Repair.ID,
			Name:         line.Repair.Label(),
			Quantity:     1,
			UnitPriceUSD: money.Format(line.Repair.RemainingUSD),
			LineTotalUSD: money.Format(line.TotalUSD()),
			CustomerID:   &customerID,
			CustomerName: line.Repair.CustomerName,
			Description:  line.Repair.Description,
		}
	}
	return cartItemResponse{Kind: item.Kind().String(), ID: item.ID()}
}

func newRateResponse(r rates.Rate) rateResponse {
	return rateResponse{
		Rate:       r.Value.String(),
		Provenance: r.Provenance.String(),
		UpdatedAt:  r.UpdatedAt,
	}
}

type saleLineResponse struct {
	Position      int    `json:"position"`
	Kind          string `json:"kind"`
	ProductID     *int64 `json:"product_id,omitempty"`
	RepairOrderID *int64 `json:"repair_order_id,omitempty"`
	Description   string `json:"description"`
	Quantity      int    `json:"quantity"`
	UnitPriceUSD  string `json:"unit_price_usd"`
	LineTotalUSD  string `json:"line_total_usd"`
}

type saleResponse struct {
	Number             string             `json:"number"`
	TerminalID         string             `json:"terminal_id"`
	CustomerID         *int64             `json:"customer_id"`
	Currency           string             `json:"currency"`
	ExchangeRate       string             `json:"exchange_rate"`
	ProductSubtotalUSD string             `json:"product_subtotal_usd"`
	RepairSubtotalUSD  string             `json:"repair_subtotal_usd"`
	TotalUSD           string             `json:"total_usd"`
	TotalLocal         string             `json:"total_local"`
	CreatedAt          time.Time          `json:"created_at"`
	Lines              []saleLineResponse `json:"lines"`
}

func newSaleResponse(s *models.Sale) saleResponse {
	lines := make([]saleLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, saleLineResponse{
			Position:      l.Position,
			Kind:          l.Kind.String(),
			ProductID:     l.ProductID,
			RepairOrderID: l.RepairOrderID,
			Description:   l.Description,
			Quantity:      l.Quantity,
			UnitPriceUSD:  money.Format(l.UnitPriceUSD),
			LineTotalUSD:  money.Format(l.LineTotalUSD),
		})
	}
	return saleResponse{
		Number:             s.Number.String(),
		TerminalID:         s.TerminalID,
		CustomerID:         s.CustomerID,
		Currency:           s.Currency.String(),
		ExchangeRate:       s.ExchangeRate.String(),
		ProductSubtotalUSD: money.Format(s.ProductSubtotalUSD),
		RepairSubtotalUSD:  money.Format(s.RepairSubtotalUSD),
		TotalUSD:           money.Format(s.TotalUSD),
		TotalLocal:         money.Format(s.TotalLocal),
		CreatedAt:          s.CreatedAt,
		Lines:              lines,
	}
}

type productResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku,omitempty"`
	PriceUSD string `json:"price_usd"`
	Stock    int    `json:"stock"`
}

func newProductResponse(p cart.ProductRef) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, SKU: p.SKU, PriceUSD: money.Format(p.PriceUSD), Stock: p.Stock}
}

type repairResponse struct {
	ID           int64  `json:"id"`
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Device       string `json:"device"`
	Description  string `json:"description,omitempty"`
	RemainingUSD string `json:"remaining_usd"`
}

func newRepairResponse(r cart.RepairRef) repairResponse {
	return repairResponse{
		ID:           r.ID,
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		Device:       r.Label(),
		Description:  r.Description,
		RemainingUSD: money.Format(r.RemainingUSD),
	}
}
