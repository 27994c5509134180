package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/repairpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
)

// ProductRef is the inventory snapshot taken when a product is added.
type ProductRef struct {
	ID         int64
	Name       string
	PriceUSD   decimal.Decimal
	SKU        string
	Stock      int
	CategoryID int64
}

// Validate rejects references the engine cannot price.
func (p ProductRef) Validate() error {
	switch {
	case p.ID <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	case strings.TrimSpace(p.Name) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	case p.PriceUSD.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative").
			WithDetails(map[string]any{"product_id": p.ID, "price_usd": p.PriceUSD.String()})
	}
	return nil
}

// RepairRef is the repair-order balance snapshot taken when a repair is added.
type RepairRef struct {
	ID           int64
	CustomerID   int64
	CustomerName string
	DeviceBrand  string
	DeviceModel  string
	RemainingUSD decimal.Decimal
	Description  string
}

func (r RepairRef) Validate() error {
	switch {
	case r.ID <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "repair id must be positive")
	case r.CustomerID <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "repair customer id must be positive")
	case r.RemainingUSD.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "repair balance cannot be negative").
			WithDetails(map[string]any{"repair_id": r.ID, "remaining_usd": r.RemainingUSD.String()})
	}
	return nil
}

// Label is the human-readable device line used on receipts.
func (r RepairRef) Label() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", r.DeviceBrand, r.DeviceModel))
}

// Item is one cart line. The set of implementations is closed: ProductLine
// and RepairLine. Consumers switch on the concrete type and panic on anything
// else.
type Item interface {
	Kind() enums.CartItemKind
	ID() int64
	isItem()
}

// ProductLine is a quantified product. Quantity is always at least 1.
type ProductLine struct {
	Product  ProductRef
	Quantity int
}

func (ProductLine) Kind() enums.CartItemKind { return enums.CartItemKindProduct }
func (l ProductLine) ID() int64              { return l.Product.ID }
func (ProductLine) isItem()                  {}

// TotalUSD is the unrounded line amount.
func (l ProductLine) TotalUSD() decimal.Decimal {
	return l.Product.PriceUSD.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// RepairLine settles a repair balance as a whole.
type RepairLine struct {
	Repair RepairRef
}

func (RepairLine) Kind() enums.CartItemKind { return enums.CartItemKindRepair }
func (l RepairLine) ID() int64              { return l.Repair.ID }
func (RepairLine) isItem()                  {}

func (l RepairLine) TotalUSD() decimal.Decimal {
	return l.Repair.RemainingUSD
}

// LineTotalUSD returns the unrounded amount of any cart line.
func LineTotalUSD(item Item) decimal.Decimal {
	switch line := item.(type) {
	case ProductLine:
		return line.TotalUSD()
	case RepairLine:
		return line.TotalUSD()
	default:
		panic(unknownItem(item))
	}
}

func unknownItem(item Item) string {
	return fmt.Sprintf("cart: unknown item type %T", item)
}
