package metrics

import "github.com/prometheus/client_golang/prometheus"

// RateMetrics tracks the exchange rate and its synchronization.
type RateMetrics struct {
	syncs   *prometheus.CounterVec
	current prometheus.Gauge
}

func NewRateMetrics(reg prometheus.Registerer) *RateMetrics {
	if reg == nil {
		return &RateMetrics{}
	}
	m := &RateMetrics{
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_syncs_total",
			Help:      "Rate synchronization attempts by outcome.",
		}, []string{"outcome"}),
		current: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exchange_rate",
			Help:      "Live local-currency units per USD.",
		}),
	}
	reg.MustRegister(m.syncs, m.current)
	return m
}

// SyncOutcome counts a sync attempt; outcome is "success", "network", "upstream" or "breaker_open".
func (m *RateMetrics) SyncOutcome(outcome string) {
	if m == nil || m.syncs == nil {
		return
	}
	m.syncs.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *RateMetrics) SetCurrent(rate float64) {
	if m == nil || m.current == nil {
		return
	}
	m.current.Set(rate)
}
