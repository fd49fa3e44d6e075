package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds the ledger's Prometheus metrics and implements
// usecase.LedgerMetrics.
type Metrics struct {
	// Movement metrics
	MovementsRecorded *prometheus.CounterVec
	MovementAmount    *prometheus.HistogramVec
	Rejections        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	StorageRetries    prometheus.Counter

	// Reconciliation metrics
	ReconciliationRuns          prometheus.Counter
	ReconciliationDiscrepancies prometheus.Gauge

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventsPruned    prometheus.Counter
}

// New creates the metrics and registers them with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		MovementsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_movements_recorded_total",
				Help: "Total movements recorded by kind",
			},
			[]string{"kind"},
		),
		MovementAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budget_movement_amount",
				Help:    "Recorded movement amounts",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"kind"},
		),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_operation_rejections_total",
				Help: "Rejected ledger operations by reason",
			},
			[]string{"operation", "reason"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budget_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		StorageRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_storage_retries_total",
			Help: "Units of work re-run after a transient database conflict",
		}),

		ReconciliationRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_reconciliation_runs_total",
			Help: "Total reconciliation sweeps",
		}),
		ReconciliationDiscrepancies: factory.NewGauge(prometheus.GaugeOpts{
			Name: "budget_reconciliation_discrepancies",
			Help: "Accounts whose stored balance drifted in the last sweep",
		}),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_outbox_events_published_total",
				Help: "Outbox events published by type",
			},
			[]string{"event_type"},
		),
		EventsPruned: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_outbox_events_pruned_total",
			Help: "Published outbox events deleted by retention",
		}),
	}
}

// RecordMovement counts a committed movement.
func (m *Metrics) RecordMovement(kind string, amount decimal.Decimal) {
	m.MovementsRecorded.WithLabelValues(kind).Inc()
	m.MovementAmount.WithLabelValues(kind).Observe(amount.InexactFloat64())
}

// RecordRejection counts a refused operation.
func (m *Metrics) RecordRejection(operation, reason string) {
	m.Rejections.WithLabelValues(operation, reason).Inc()
}

// RecordOperationDuration observes how long an operation took.
func (m *Metrics) RecordOperationDuration(operation string, d time.Duration) {
	m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordRetry counts a re-run unit of work. Its signature fits the
// postgres retrier hook.
func (m *Metrics) RecordRetry(int, error) {
	m.StorageRetries.Inc()
}

// RecordReconciliation stores the outcome of a sweep.
func (m *Metrics) RecordReconciliation(discrepancies int) {
	m.ReconciliationRuns.Inc()
	m.ReconciliationDiscrepancies.Set(float64(discrepancies))
}

// RecordPublished counts a published outbox event.
func (m *Metrics) RecordPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// RecordPruned counts deleted outbox events.
func (m *Metrics) RecordPruned(n int64) {
	m.EventsPruned.Add(float64(n))
}
