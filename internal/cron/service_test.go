package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/repairpos/pkg/logger"
	"github.com/angelmondragon/repairpos/pkg/metrics"
)

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

type heldLock struct{}

func (heldLock) Acquire(context.Context) (bool, error) { return false, nil }
func (heldLock) Release(context.Context) error         { return nil }

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	ok := &testJob{name: "success"}
	bad := &testJob{name: "fail", err: errors.New("boom")}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(ok, bad),
		Lock:     &LocalLock{},
		Metrics:  metrics.NewJobMetrics(reg),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if ok.runs != 1 || bad.runs != 1 {
		t.Fatalf("expected each job to run once, got %d and %d", ok.runs, bad.runs)
	}
	if got := counterValue(t, reg, "fail", "failure"); got != 1 {
		t.Fatalf("expected one failure recorded, got %f", got)
	}

	// lock is released after the cycle
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if ok.runs != 2 {
		t.Fatalf("expected second cycle to run, got %d", ok.runs)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "skip"}
	service, err := NewService(ServiceParams{Logger: logger.Nop(), Registry: NewRegistry(job), Lock: heldLock{}})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job should not run without the lock")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "tick"}
	service, err := NewService(ServiceParams{Logger: logger.Nop(), Registry: NewRegistry(job), Lock: &LocalLock{}, Interval: time.Hour})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	if job.runs != 1 {
		t.Fatalf("expected the initial cycle to run once, got %d", job.runs)
	}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := NewService(ServiceParams{Lock: &LocalLock{}}); err == nil {
		t.Fatal("expected logger error")
	}
	if _, err := NewService(ServiceParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected lock error")
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, job, outcome string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "repairpos_job_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["job"] == job && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("no counter for job=%s outcome=%s", job, outcome)
	return 0
}
