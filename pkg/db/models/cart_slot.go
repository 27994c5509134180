package models

import "time"

// CartSlot holds the serialized cart of one terminal under a fixed key.
type CartSlot struct {
	Key           string    `gorm:"column:slot_key;primaryKey"`
	Payload       string    `gorm:"column:payload;type:text;not null"`
	SchemaVersion int       `gorm:"column:schema_version;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
