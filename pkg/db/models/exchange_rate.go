package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/repairpos/pkg/enums"
)

// ExchangeRate records every USD→local rate the shop accepted.
type ExchangeRate struct {
	ID         int64                `gorm:"column:id;primaryKey;autoIncrement"`
	Rate       decimal.Decimal      `gorm:"column:rate;type:numeric(18,6);not null"`
	Provenance enums.RateProvenance `gorm:"column:provenance;not null"`
	CreatedAt  time.Time            `gorm:"column:created_at;not null;index"`
}
