package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/repairpos/internal/rates"
	"github.com/angelmondragon/repairpos/pkg/db/dbtest"
	"github.com/angelmondragon/repairpos/pkg/enums"
	"github.com/angelmondragon/repairpos/pkg/logger"
)

type fakeSyncer struct {
	enabled bool
	err     error
	calls   int
}

func (f *fakeSyncer) SyncEnabled() bool { return f.enabled }

func (f *fakeSyncer) Sync(context.Context) (rates.Rate, error) {
	f.calls++
	return rates.Rate{Value: decimal.NewFromInt(40)}, f.err
}

func TestRateSyncJob(t *testing.T) {
	disabled := &fakeSyncer{}
	job, err := NewRateSyncJob(logger.Nop(), disabled)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil || disabled.calls != 0 {
		t.Fatalf("disabled sync should be skipped: err=%v calls=%d", err, disabled.calls)
	}

	failing := &fakeSyncer{enabled: true, err: errors.New("unreachable")}
	job, _ = NewRateSyncJob(logger.Nop(), failing)
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected sync error to propagate")
	}
	if job.Name() != "rate-sync" {
		t.Fatalf("unexpected name %q", job.Name())
	}
}

type fakePruner struct {
	cutoff time.Time
	err    error
}

func (f *fakePruner) DeleteOlderThan(_ context.Context, _ *gorm.DB, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

type passthroughTx struct{}

func (passthroughTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func TestRateHistoryJobCutoff(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	pruner := &fakePruner{}
	iface, err := NewRateHistoryJob(RateHistoryJobParams{Logger: logger.Nop(), DB: passthroughTx{}, Repository: pruner, Retention: 30})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job := iface.(*rateHistoryJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := now.Add(-30 * 24 * time.Hour); !pruner.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, pruner.cutoff)
	}

	pruner.err = errors.New("locked")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRateHistoryJobKeepsNewestRow(t *testing.T) {
	client := dbtest.NewClient(t)
	repo := rates.NewRepository(client.DB())
	ctx := context.Background()
	old := time.Now().UTC().AddDate(0, 0, -200)
	for i := 0; i < 3; i++ {
		if err := repo.Record(ctx, rates.Rate{Value: decimal.NewFromInt(int64(30 + i)), Provenance: enums.RateProvenanceSynced, UpdatedAt: old.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	job, err := NewRateHistoryJob(RateHistoryJobParams{Logger: logger.Nop(), DB: client, Repository: repo})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	list, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !list[0].Value.Equal(decimal.NewFromInt(32)) {
		t.Fatalf("expected only the newest rate to survive, got %+v", list)
	}
}
