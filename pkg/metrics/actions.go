package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess  = "success"
	OutcomeRedirect = "redirect"
	OutcomeError    = "error"
)

// ActionMetrics records outcomes and latency of storefront action handlers.
type ActionMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewActionMetrics registers the action metrics on the provided registerer.
func NewActionMetrics(reg prometheus.Registerer) *ActionMetrics {
	if reg == nil {
		return &ActionMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_action_duration_seconds",
		Help:    "Duration of storefront actions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_action_total",
		Help: "Storefront action executions by outcome.",
	}, []string{"action", "outcome"})
	reg.MustRegister(duration, total)
	return &ActionMetrics{
		duration: duration,
		total:    total,
	}
}

// Observe records one execution of the named action.
func (m *ActionMetrics) Observe(action, outcome string, elapsed time.Duration) {
	if m == nil || m.duration == nil || m.total == nil {
		return
	}
	action = normalizeLabel(action)
	m.duration.WithLabelValues(action).Observe(elapsed.Seconds())
	m.total.WithLabelValues(action, normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
