package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	appservicev1alpha1 "github.com/dc-tec/appslot-operator/api/v1alpha1"
)

var (
	reconcileDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "appslot",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation loops in seconds",
			// ARM long-running operations (slot create, swap) dominate the tail.
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"namespace", "name", "controller"},
	)

	reconcileErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appslot",
			Name:      "reconcile_errors_total",
			Help:      "Total number of reconciliation errors",
		},
		[]string{"namespace", "name", "controller", "reason"},
	)

	remoteOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appslot",
			Name:      "remote_operations_total",
			Help:      "Total number of App Service management operations issued",
		},
		[]string{"namespace", "name", "operation"},
	)

	slotPhaseGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "appslot",
			Name:      "slot_phase",
			Help:      "Current phase of a WebAppSlot (1 = active phase)",
		},
		[]string{"namespace", "name", "phase"},
	)

	slotChangedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appslot",
			Name:      "slot_changed_total",
			Help:      "Total number of reconcile passes that mutated the remote slot",
		},
		[]string{"namespace", "name"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		reconcileDurationHistogram,
		reconcileErrorsTotal,
		remoteOperationsTotal,
		slotPhaseGauge,
		slotChangedTotal,
	)
}

// ReconcileMetrics provides helpers to record reconcile-level metrics for a
// specific controller and WebAppSlot.
type ReconcileMetrics struct {
	namespace  string
	name       string
	controller string
}

// NewReconcileMetrics creates a new ReconcileMetrics instance.
func NewReconcileMetrics(namespace, name, controller string) *ReconcileMetrics {
	return &ReconcileMetrics{
		namespace:  namespace,
		name:       name,
		controller: controller,
	}
}

// ObserveDuration records the duration of a reconcile loop in seconds.
func (m *ReconcileMetrics) ObserveDuration(durationSeconds float64) {
	reconcileDurationHistogram.
		WithLabelValues(m.namespace, m.name, m.controller).
		Observe(durationSeconds)
}

// IncrementError increments the reconcile error counter with the given reason.
// Reason values should be low-cardinality strings (for example, "RemoteFault").
func (m *ReconcileMetrics) IncrementError(reason string) {
	reconcileErrorsTotal.
		WithLabelValues(m.namespace, m.name, m.controller, reason).
		Inc()
}

// SlotMetrics provides helpers to record per-slot state metrics.
type SlotMetrics struct {
	namespace string
	name      string
}

// NewSlotMetrics creates a new SlotMetrics instance.
func NewSlotMetrics(namespace, name string) *SlotMetrics {
	return &SlotMetrics{
		namespace: namespace,
		name:      name,
	}
}

// SetPhase records the current phase for the slot. The gauge is set to 1 for
// the provided phase. Other historical phase series will naturally age out in
// Prometheus retention.
func (m *SlotMetrics) SetPhase(phase appservicev1alpha1.SlotPhase) {
	slotPhaseGauge.
		WithLabelValues(m.namespace, m.name, string(phase)).
		Set(1.0)
}

// RecordRemoteOperation counts one App Service management call, keyed by a
// low-cardinality operation name such as "create_slot" or "swap".
func (m *SlotMetrics) RecordRemoteOperation(operation string) {
	remoteOperationsTotal.
		WithLabelValues(m.namespace, m.name, operation).
		Inc()
}

// RecordChanged counts a reconcile pass that performed at least one mutation.
func (m *SlotMetrics) RecordChanged() {
	slotChangedTotal.
		WithLabelValues(m.namespace, m.name).
		Inc()
}

// Clear removes all per-slot metrics. This should be called during
// finalization to avoid leaving stale series after deletion.
func (m *SlotMetrics) Clear() {
	slotChangedTotal.DeleteLabelValues(m.namespace, m.name)
	remoteOperationsTotal.DeletePartialMatch(prometheus.Labels{
		"namespace": m.namespace,
		"name":      m.name,
	})
	slotPhaseGauge.DeletePartialMatch(prometheus.Labels{
		"namespace": m.namespace,
		"name":      m.name,
	})
}
