package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "repairpos"

// JobMetrics records outcomes for scheduled jobs.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
}

// NewJobMetrics registers the scheduler metrics on the provided registerer.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Duration of scheduled jobs in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Scheduled job executions by outcome.",
	}, []string{"job", "outcome"})
	reg.MustRegister(duration, runs)
	return &JobMetrics{duration: duration, runs: runs}
}

// Observe records one job execution.
func (m *JobMetrics) Observe(job string, took time.Duration, err error) {
	if m == nil || m.duration == nil {
		return
	}
	job = normalizeLabel(job)
	m.duration.WithLabelValues(job).Observe(took.Seconds())
	m.runs.WithLabelValues(job, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
