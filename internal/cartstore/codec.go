package cartstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/repairpos/internal/cart"
	"github.com/angelmondragon/repairpos/pkg/enums"
)

// SchemaVersion is bumped whenever the slot layout changes incompatibly.
const SchemaVersion = 1

var (
	ErrSchemaVersion = errors.New("cart slot schema version mismatch")
	ErrInvalidSlot   = errors.New("cart slot violates cart invariants")
)

type slotPayload struct {
	Items                []slotItem     `json:"items"`
	ExchangeRateSnapshot json.Number    `json:"exchangeRateSnapshot"`
	Currency             enums.Currency `json:"currency"`
	SelectedCustomerID   *int64         `json:"selectedCustomerId"`
	SchemaVersion        int            `json:"schemaVersion"`
}

type slotItem struct {
	Kind     enums.CartItemKind `json:"kind"`
	Product  *slotProduct       `json:"product,omitempty"`
	Quantity int                `json:"quantity,omitempty"`
	Repair   *slotRepair        `json:"repair,omitempty"`
}

type slotProduct struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	PriceUSD   json.Number `json:"priceUsd"`
	SKU        *string     `json:"sku"`
	Stock      int         `json:"stock"`
	CategoryID int64       `json:"categoryId"`
}

type slotRepair struct {
	ID           int64       `json:"id"`
	CustomerID   int64       `json:"customerId"`
	CustomerName string      `json:"customerName"`
	DeviceBrand  string      `json:"deviceBrand"`
	DeviceModel  string      `json:"deviceModel"`
	RemainingUSD json.Number `json:"remainingUsd"`
	Description  string      `json:"description"`
}

// Encode serializes the cart aggregate into the slot layout.
func Encode(state cart.State) ([]byte, error) {
	payload := slotPayload{
		Items:                make([]slotItem, 0, len(state.Items)),
		ExchangeRateSnapshot: number(state.ExchangeRateSnapshot),
		Currency:             state.Currency,
		SelectedCustomerID:   state.SelectedCustomerID,
		SchemaVersion:        SchemaVersion,
	}
	for _, item := range state.Items {
		switch line := item.(type) {
		case cart.ProductLine:
			p := line.Product
			var sku *string
			if p.SKU != "" {
				sku = &p.SKU
			}
			payload.Items = append(payload.Items, slotItem{
				Kind:     enums.CartItemKindProduct,
				Quantity: line.Quantity,
				Product: &slotProduct{
					ID:         p.ID,
					Name:       p.Name,
					PriceUSD:   number(p.PriceUSD),
					SKU:        sku,
					Stock:      p.Stock,
					CategoryID: p.CategoryID,
				},
			})
		case cart.RepairLine:
			r := line.Repair
			payload.Items = append(payload.Items, slotItem{
				Kind: enums.CartItemKindRepair,
				Repair: &slotRepair{
					ID:           r.ID,
					CustomerID:   r.CustomerID,
					CustomerName: r.CustomerName,
					DeviceBrand:  r.DeviceBrand,
					DeviceModel:  r.DeviceModel,
					RemainingUSD: number(r.RemainingUSD),
					Description:  r.Description,
				},
			})
		default:
			return nil, fmt.Errorf("encode cart item %T: unsupported", item)
		}
	}
	return json.Marshal(payload)
}

// Decode parses a slot and checks the restored aggregate against the cart
// invariants.
func Decode(raw []byte) (cart.State, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload slotPayload
	if err := dec.Decode(&payload); err != nil {
		return cart.State{}, fmt.Errorf("decode cart slot: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return cart.State{}, fmt.Errorf("decode cart slot: trailing data after payload")
	}
	if payload.SchemaVersion != SchemaVersion {
		return cart.State{}, fmt.Errorf("%w: got %d want %d", ErrSchemaVersion, payload.SchemaVersion, SchemaVersion)
	}

	snapshot, err := parseNumber(payload.ExchangeRateSnapshot)
	if err != nil {
		return cart.State{}, fmt.Errorf("decode exchangeRateSnapshot: %w", err)
	}
	state := cart.State{
		Items:                make([]cart.Item, 0, len(payload.Items)),
		ExchangeRateSnapshot: snapshot,
		Currency:             payload.Currency,
		SelectedCustomerID:   payload.SelectedCustomerID,
	}
	for i, raw := range payload.Items {
		item, err := decodeItem(raw)
		if err != nil {
			return cart.State{}, fmt.Errorf("decode item %d: %w", i, err)
		}
		state.Items = append(state.Items, item)
	}

	if err := state.Validate(); err != nil {
		return cart.State{}, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}
	return state, nil
}

func decodeItem(raw slotItem) (cart.Item, error) {
	switch raw.Kind {
	case enums.CartItemKindProduct:
		if raw.Product == nil {
			return nil, errors.New("product line without product")
		}
		price, err := parseNumber(raw.Product.PriceUSD)
		if err != nil {
			return nil, fmt.Errorf("priceUsd: %w", err)
		}
		ref := cart.ProductRef{
			ID:         raw.Product.ID,
			Name:       raw.Product.Name,
			PriceUSD:   price,
			Stock:      raw.Product.Stock,
			CategoryID: raw.Product.CategoryID,
		}
		if raw.Product.SKU != nil {
			ref.SKU = *raw.Product.SKU
		}
		return cart.ProductLine{Product: ref, Quantity: raw.Quantity}, nil
	case enums.CartItemKindRepair:
		if raw.Repair == nil {
			return nil, errors.New("repair line without repair")
		}
		remaining, err := parseNumber(raw.Repair.RemainingUSD)
		if err != nil {
			return nil, fmt.Errorf("remainingUsd: %w", err)
		}
		return cart.RepairLine{Repair: cart.RepairRef{
			ID:           raw.Repair.ID,
			CustomerID:   raw.Repair.CustomerID,
			CustomerName: raw.Repair.CustomerName,
			DeviceBrand:  raw.Repair.DeviceBrand,
			DeviceModel:  raw.Repair.DeviceModel,
			RemainingUSD: remaining,
			Description:  raw.Repair.Description,
		}}, nil
	default:
		return nil, fmt.Errorf("unknown item kind %q", raw.Kind)
	}
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func parseNumber(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, errors.New("missing number")
	}
	return decimal.NewFromString(string(n))
}
