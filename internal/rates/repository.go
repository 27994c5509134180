package rates

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/repairpos/pkg/db/models"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
)

const defaultHistoryLimit = 50

// Repository persists accepted rates in exchange_rates.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record appends a rate to the history.
func (r *Repository) Record(ctx context.Context, rate Rate) error {
	row := models.ExchangeRate{
		Rate:       rate.Value,
		Provenance: rate.Provenance,
		CreatedAt:  rate.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record exchange rate")
	}
	return nil
}

// Latest returns the most recently recorded rate.
func (r *Repository) Latest(ctx context.Context) (Rate, error) {
	var row models.ExchangeRate
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Rate{}, pkgerrors.New(pkgerrors.CodeNotFound, "no exchange rate recorded")
		}
		return Rate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest exchange rate")
	}
	return fromModel(row), nil
}

// List returns the newest rates first.
func (r *Repository) List(ctx context.Context, limit int) ([]Rate, error) {
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	var rows []models.ExchangeRate
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list exchange rates")
	}
	out := make([]Rate, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func fromModel(row models.ExchangeRate) Rate {
	return Rate{Value: row.Rate, Provenance: row.Provenance, UpdatedAt: row.CreatedAt}
}

// DeleteOlderThan prunes history rows created before cutoff, always keeping
// the newest row so the terminal can seed its rate on the next start.
func (r *Repository) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	db = db.WithContext(ctx)

	var newest models.ExchangeRate
	if err := db.Order("created_at DESC").Order("id DESC").Take(&newest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load newest exchange rate")
	}
	res := db.Where("created_at < ? AND id <> ?", cutoff, newest.ID).Delete(&models.ExchangeRate{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "prune exchange rates")
	}
	return res.RowsAffected, nil
}
