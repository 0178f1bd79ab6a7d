// Package metrics provides Prometheus metrics instrumentation for the controller.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector provides metrics recording interface.
// This allows components to record metrics without direct prometheus dependency.
type Collector interface {
	// Reconcile metrics
	RecordReconcileDuration(ctx context.Context, outcome string, duration time.Duration)
	RecordDeferredTick(ctx context.Context, reason string)
	RecordManagedResources(ctx context.Context, count int)

	// Resource store metrics
	RecordStoreOperation(ctx context.Context, operation, kind, outcome string)
	RecordStoreError(ctx context.Context, operation, errorType string)

	// Template materializer metrics
	RecordMaterializeDuration(ctx context.Context, duration time.Duration)
	RecordMaterializeFailure(ctx context.Context)

	// Annotation patch metrics
	RecordAnnotationPatch(ctx context.Context, operation, outcome string)
}

// Reconcile outcome constants for metrics labels.
const (
	OutcomeConverged = "converged"
	OutcomeDegraded  = "degraded"
	OutcomeDeferred  = "deferred"
	OutcomeError     = "error"
)

// prometheusCollector implements Collector using Prometheus metrics.
type prometheusCollector struct {
	reconcileDuration *prometheus.HistogramVec
	deferredTicks     *prometheus.CounterVec
	managedResources  prometheus.Gauge

	storeOpsTotal    *prometheus.CounterVec
	storeErrorsTotal *prometheus.CounterVec

	materializeDuration prometheus.Histogram
	materializeFailures prometheus.Counter

	annotationPatches *prometheus.CounterVec
}

// NewCollector creates a new Prometheus metrics collector and registers metrics.
func NewCollector(reg prometheus.Registerer) Collector {
	c := &prometheusCollector{}
	c.initReconcileMetrics()
	c.initStoreMetrics()
	c.initMaterializeMetrics()
	c.register(reg)

	return c
}

// RecordReconcileDuration records the duration of one reconciliation tick.
func (c *prometheusCollector) RecordReconcileDuration(_ context.Context, outcome string, duration time.Duration) {
	c.reconcileDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordDeferredTick records a tick that was skipped before any store call.
func (c *prometheusCollector) RecordDeferredTick(_ context.Context, reason string) {
	c.deferredTicks.WithLabelValues(reason).Inc()
}

// RecordManagedResources records the number of resources produced by the last
// materialization pass.
func (c *prometheusCollector) RecordManagedResources(_ context.Context, count int) {
	c.managedResources.Set(float64(count))
}

// RecordStoreOperation records a resource store CRUD outcome.
func (c *prometheusCollector) RecordStoreOperation(_ context.Context, operation, kind, outcome string) {
	c.storeOpsTotal.WithLabelValues(operation, kind, outcome).Inc()
}

// RecordStoreError records a resource store fault by type.
func (c *prometheusCollector) RecordStoreError(_ context.Context, operation, errorType string) {
	c.storeErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordMaterializeDuration records the duration of template materialization.
func (c *prometheusCollector) RecordMaterializeDuration(_ context.Context, duration time.Duration) {
	c.materializeDuration.Observe(duration.Seconds())
}

// RecordMaterializeFailure records a fatal template materialization failure.
func (c *prometheusCollector) RecordMaterializeFailure(_ context.Context) {
	c.materializeFailures.Inc()
}

// RecordAnnotationPatch records an annotation set/clear attempt.
func (c *prometheusCollector) RecordAnnotationPatch(_ context.Context, operation, outcome string) {
	c.annotationPatches.WithLabelValues(operation, outcome).Inc()
}

func (c *prometheusCollector) initReconcileMetrics() {
	c.reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cfront_reconcile_duration_seconds",
			Help:    "Duration of one ingress reconciliation tick",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"outcome"},
	)
	c.deferredTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfront_deferred_ticks_total",
			Help: "Ticks deferred before any store call, by reason",
		},
		[]string{"reason"},
	)
	c.managedResources = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cfront_materialized_resources",
			Help: "Resources produced by the last materialization pass",
		},
	)
}

func (c *prometheusCollector) initStoreMetrics() {
	c.storeOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfront_store_operations_total",
			Help: "Resource store operations by op, kind and outcome",
		},
		[]string{"operation", "kind", "outcome"},
	)
	c.storeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfront_store_errors_total",
			Help: "Resource store faults by op and error type",
		},
		[]string{"operation", "error_type"},
	)
}

func (c *prometheusCollector) initMaterializeMetrics() {
	c.materializeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cfront_materialize_duration_seconds",
			Help:    "Duration of template materialization",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)
	c.materializeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cfront_materialize_failures_total",
			Help: "Fatal template materialization failures",
		},
	)
	c.annotationPatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfront_annotation_patches_total",
			Help: "Ingress annotation patch attempts by op and outcome",
		},
		[]string{"operation", "outcome"},
	)
}

func (c *prometheusCollector) register(reg prometheus.Registerer) {
	reg.MustRegister(
		c.reconcileDuration,
		c.deferredTicks,
		c.managedResources,
		c.storeOpsTotal,
		c.storeErrorsTotal,
		c.materializeDuration,
		c.materializeFailures,
		c.annotationPatches,
	)
}
