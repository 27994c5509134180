package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/repairpos/pkg/logger"
)

const rateHistoryRetentionDays = 90

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type rateHistoryPruner interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type RateHistoryJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository rateHistoryPruner
	Retention  int
}

// NewRateHistoryJob prunes exchange rate history older than the retention.
func NewRateHistoryJob(params RateHistoryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("rate history repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = rateHistoryRetentionDays
	}
	return &rateHistoryJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type rateHistoryJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      rateHistoryPruner
	retention int
	now       func() time.Time
}

func (j *rateHistoryJob) Name() string { return "rate-history-retention" }

func (j *rateHistoryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteOlderThan(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("rate history retention: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	}), "rate history pruned")
	return nil
}
