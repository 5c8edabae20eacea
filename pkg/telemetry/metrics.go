package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus observability primitives for the billing engine.
type Metrics struct {
	calculations        *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	anomalies           *prometheus.CounterVec
	billTotal           prometheus.Histogram
	reconcileDelta      prometheus.Histogram
	periodsReopened     prometheus.Counter
}

// NewMetrics registers engine metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers engine metrics on reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	calculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aquabill_calculations_total",
		Help: "Counts period calculation passes by outcome.",
	}, []string{"status"})

	calculationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aquabill_calculation_duration_seconds",
		Help:    "Duration of period calculation passes.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	anomalies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aquabill_calculation_anomalies_total",
		Help: "Counts anomalies flagged during calculation by kind.",
	}, []string{"kind"})

	billTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aquabill_bill_total_amount",
		Help:    "Distribution of per-unit bill totals.",
		Buckets: prometheus.ExponentialBuckets(1, 2.5, 12),
	})

	reconcileDelta := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aquabill_reconciliation_delta",
		Help:    "Absolute difference between billed totals and the receipt amount.",
		Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 100},
	})

	periodsReopened := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aquabill_periods_reopened_total",
		Help: "Counts closed periods reopened for correction.",
	})

	reg.MustRegister(
		calculations,
		calculationDuration,
		anomalies,
		billTotal,
		reconcileDelta,
		periodsReopened,
	)

	return &Metrics{
		calculations:        calculations,
		calculationDuration: calculationDuration,
		anomalies:           anomalies,
		billTotal:           billTotal,
		reconcileDelta:      reconcileDelta,
		periodsReopened:     periodsReopened,
	}
}

// ObserveCalculation records one calculation pass.
func (m *Metrics) ObserveCalculation(status string, took time.Duration) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(status).Inc()
	m.calculationDuration.WithLabelValues(status).Observe(took.Seconds())
}

// CountAnomaly records one flagged anomaly.
func (m *Metrics) CountAnomaly(kind string) {
	if m == nil {
		return
	}
	m.anomalies.WithLabelValues(kind).Inc()
}

// ObserveBillTotal records one per-unit bill total.
func (m *Metrics) ObserveBillTotal(amount float64) {
	if m == nil {
		return
	}
	m.billTotal.Observe(amount)
}

// ObserveReconcileDelta records the absolute reconciliation difference.
func (m *Metrics) ObserveReconcileDelta(delta float64) {
	if m == nil {
		return
	}
	if delta < 0 {
		delta = -delta
	}
	m.reconcileDelta.Observe(delta)
}

// CountReopen records a period reopen.
func (m *Metrics) CountReopen() {
	if m == nil {
		return
	}
	m.periodsReopened.Inc()
}
