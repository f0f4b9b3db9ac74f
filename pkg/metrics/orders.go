package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order submissions, status changes and reference
// lookups served by the API.
type OrderMetrics struct {
	submissions *prometheus.CounterVec
	transitions *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	reconciled  prometheus.Counter
}

// NewOrderMetrics registers order metrics on reg. A nil registerer yields a
// no-op recorder so services can be built without prometheus in tests.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "submissions_total",
			Help:      "Order submissions by terminal stage and result.",
		}, []string{"stage", "result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Applied order status transitions.",
		}, []string{"actor", "to"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "lookups_total",
			Help:      "Reference lookups by entity kind and outcome.",
		}, []string{"kind", "outcome"}),
		reconciled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "reconciled_total",
			Help:      "Incomplete orders cancelled by the reconcile job.",
		}),
	}
	reg.MustRegister(m.submissions, m.transitions, m.resolutions, m.reconciled)
	return m
}

// ObserveSubmission records the stage a submission ended at.
func (m *OrderMetrics) ObserveSubmission(stage string, ok bool) {
	if m == nil || m.submissions == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.submissions.WithLabelValues(labelOrUnknown(stage), result).Inc()
}

// ObserveTransition records an applied status change.
func (m *OrderMetrics) ObserveTransition(actor, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(labelOrUnknown(actor), labelOrUnknown(to)).Inc()
}

// ObserveResolution records a reference lookup outcome: hit, not_found,
// ambiguous or error.
func (m *OrderMetrics) ObserveResolution(kind, outcome string) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(labelOrUnknown(kind), labelOrUnknown(outcome)).Inc()
}

// AddReconciled adds n cancelled orders to the reconcile counter.
func (m *OrderMetrics) AddReconciled(n int) {
	if m == nil || m.reconciled == nil || n <= 0 {
		return
	}
	m.reconciled.Add(float64(n))
}
