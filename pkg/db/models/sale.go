package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/repairpos/pkg/enums"
)

// Sale is the financial record produced when a cart is checked out.
type Sale struct {
	ID                 int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Number             uuid.UUID       `gorm:"column:number;type:uuid;uniqueIndex;not null"`
	TerminalID         string          `gorm:"column:terminal_id;not null"`
	CustomerID         *int64          `gorm:"column:customer_id;index"`
	Currency           enums.Currency  `gorm:"column:currency;not null"`
	ExchangeRate       decimal.Decimal `gorm:"column:exchange_rate;type:numeric(18,6);not null"`
	ProductSubtotalUSD decimal.Decimal `gorm:"column:product_subtotal_usd;type:numeric(14,2);not null"`
	RepairSubtotalUSD  decimal.Decimal `gorm:"column:repair_subtotal_usd;type:numeric(14,2);not null"`
	TotalUSD           decimal.Decimal `gorm:"column:total_usd;type:numeric(14,2);not null"`
	TotalLocal         decimal.Decimal `gorm:"column:total_local;type:numeric(18,2);not null"`
	Lines              []SaleLine      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// SaleLine snapshots one cart item as it was sold.
type SaleLine struct {
	ID            int64              `gorm:"column:id;primaryKey;autoIncrement"`
	SaleID        int64              `gorm:"column:sale_id;not null;index"`
	Position      int                `gorm:"column:position;not null"`
	Kind          enums.CartItemKind `gorm:"column:kind;not null"`
	ProductID     *int64             `gorm:"column:product_id"`
	RepairOrderID *int64             `gorm:"column:repair_order_id"`
	Description   string             `gorm:"column:description;not null"`
	Quantity      int                `gorm:"column:quantity;not null"`
	UnitPriceUSD  decimal.Decimal    `gorm:"column:unit_price_usd;type:numeric(12,2);not null"`
	LineTotalUSD  decimal.Decimal    `gorm:"column:line_total_usd;type:numeric(14,2);not null"`
}
