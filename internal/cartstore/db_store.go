package cartstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/repairpos/pkg/db/models"
)

// DBStore keeps the slot in the cart_slots table.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Load(ctx context.Context, key string) ([]byte, error) {
	var slot models.CartSlot
	err := s.db.WithContext(ctx).Where("slot_key = ?", key).Take(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("load cart slot %q: %w", key, err)
	}
	return []byte(slot.Payload), nil
}

func (s *DBStore) Save(ctx context.Context, key string, payload []byte) error {
	slot := models.CartSlot{
		Key:           key,
		Payload:       string(payload),
		SchemaVersion: SchemaVersion,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "schema_version", "updated_at"}),
	}).Create(&slot).Error
	if err != nil {
		return fmt.Errorf("save cart slot %q: %w", key, err)
	}
	return nil
}

func (s *DBStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&models.CartSlot{}).Error; err != nil {
		return fmt.Errorf("delete cart slot %q: %w", key, err)
	}
	return nil
}
