package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/repairpos/internal/rates"
	"github.com/angelmondragon/repairpos/pkg/logger"
)

type rateSyncer interface {
	Sync(ctx context.Context) (rates.Rate, error)
	SyncEnabled() bool
}

type rateSyncJob struct {
	logg   *logger.Logger
	source rateSyncer
}

// NewRateSyncJob refreshes the live rate from the authority.
func NewRateSyncJob(logg *logger.Logger, source rateSyncer) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if source == nil {
		return nil, fmt.Errorf("rate source required")
	}
	return &rateSyncJob{logg: logg, source: source}, nil
}

func (j *rateSyncJob) Name() string { return "rate-sync" }

func (j *rateSyncJob) Run(ctx context.Context) error {
	if !j.source.SyncEnabled() {
		return nil
	}
	rate, err := j.source.Sync(ctx)
	if err != nil {
		return fmt.Errorf("rate sync: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "rate", rate.Value.String()), "rate synced")
	return nil
}
