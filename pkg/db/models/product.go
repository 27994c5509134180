package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an inventory unit sellable at the counter.
type Product struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string          `gorm:"column:name;not null"`
	SKU        *string         `gorm:"column:sku;uniqueIndex"`
	PriceUSD   decimal.Decimal `gorm:"column:price_usd;type:numeric(12,2);not null"`
	Stock      int             `gorm:"column:stock;not null;default:0"`
	CategoryID int64           `gorm:"column:category_id;not null;default:0"`
	IsActive   bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
