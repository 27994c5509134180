package metrics

import "github.com/prometheus/client_golang/prometheus"

// CartMetrics tracks cart mutations and slot persistence.
type CartMetrics struct {
	mutations        *prometheus.CounterVec
	persistFailures  prometheus.Counter
	restoreFallbacks *prometheus.CounterVec
	items            prometheus.Gauge
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	m := &CartMetrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation.",
		}, []string{"op"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_persist_failures_total",
			Help:      "Cart slot writes that failed.",
		}),
		restoreFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_restore_fallbacks_total",
			Help:      "Startups that fell back to an empty cart, by reason.",
		}, []string{"reason"}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_items",
			Help:      "Lines currently in the cart.",
		}),
	}
	reg.MustRegister(m.mutations, m.persistFailures, m.restoreFallbacks, m.items)
	return m
}

// Mutation counts one cart operation and records the resulting line count.
func (m *CartMetrics) Mutation(op string, lines int) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op)).Inc()
	m.items.Set(float64(lines))
}

func (m *CartMetrics) PersistFailed() {
	if m == nil || m.persistFailures == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *CartMetrics) RestoreFallback(reason string) {
	if m == nil || m.restoreFallbacks == nil {
		return
	}
	m.restoreFallbacks.WithLabelValues(normalizeLabel(reason)).Inc()
}
