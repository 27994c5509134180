package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/repairpos/pkg/enums"
)

// RepairOrder is a service ticket whose outstanding balance can be collected
// at the counter.
type RepairOrder struct {
	ID          int64              `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID  int64              `gorm:"column:customer_id;not null;index"`
	Customer    Customer           `gorm:"foreignKey:CustomerID"`
	DeviceBrand string             `gorm:"column:device_brand;not null"`
	DeviceModel string             `gorm:"column:device_model;not null"`
	Description string             `gorm:"column:description"`
	Status      enums.RepairStatus `gorm:"column:status;not null;default:'received'"`
	TotalUSD    decimal.Decimal    `gorm:"column:total_usd;type:numeric(12,2);not null"`
	PaidUSD     decimal.Decimal    `gorm:"column:paid_usd;type:numeric(12,2);not null;default:0"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// RemainingUSD is the balance still owed on the order.
func (r RepairOrder) RemainingUSD() decimal.Decimal {
	return r.TotalUSD.Sub(r.PaidUSD)
}
