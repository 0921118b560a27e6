package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for reservation attempts.
const (
	OutcomeConfirmed     = "confirmed"
	OutcomeRejected      = "rejected"
	OutcomeInvalid       = "invalid"
	OutcomeLedgerFailure = "ledger_failure"
	OutcomeError         = "error"
)

// ReservationMetrics exposes counters for the reservation engine.
type ReservationMetrics struct {
	attempts      *prometheus.CounterVec
	latency       prometheus.Histogram
	orphanedSlots prometheus.Gauge
}

func NewReservationMetrics(reg prometheus.Registerer) *ReservationMetrics {
	m := &ReservationMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartcare",
			Subsystem: "reservations",
			Name:      "attempts_total",
			Help:      "Reservation attempts by outcome",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "smartcare",
			Subsystem: "reservations",
			Name:      "reserve_seconds",
			Help:      "Latency of the conditional reservation update plus ledger append",
			Buckets:   prometheus.DefBuckets,
		}),
		orphanedSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "smartcare",
			Subsystem: "reservations",
			Name:      "orphaned_slots",
			Help:      "Reserved slots without a confirmed ledger entry at the last sweep",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.attempts, m.latency, m.orphanedSlots)
	return m
}

func (m *ReservationMetrics) ObserveAttempt(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
	m.latency.Observe(seconds)
}

func (m *ReservationMetrics) SetOrphanedSlots(n int) {
	if m == nil {
		return
	}
	m.orphanedSlots.Set(float64(n))
}

// TriageMetrics exposes counters for the triage classifier.
type TriageMetrics struct {
	classifications *prometheus.CounterVec
	primaryFailures *prometheus.CounterVec
	cacheHits       prometheus.Counter
}

func NewTriageMetrics(reg prometheus.Registerer) *TriageMetrics {
	m := &TriageMetrics{
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartcare",
			Subsystem: "triage",
			Name:      "classifications_total",
			Help:      "Classifications by source and department",
		}, []string{"source", "department"}),
		primaryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartcare",
			Subsystem: "triage",
			Name:      "primary_failures_total",
			Help:      "Primary classifier failures that triggered the fallback",
		}, []string{"reason"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smartcare",
			Subsystem: "triage",
			Name:      "cache_hits_total",
			Help:      "Primary classifications served from cache",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.classifications, m.primaryFailures, m.cacheHits)
	return m
}

func (m *TriageMetrics) ObserveClassification(source, department string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(source, department).Inc()
}

func (m *TriageMetrics) ObservePrimaryFailure(reason string) {
	if m == nil {
		return
	}
	m.primaryFailures.WithLabelValues(reason).Inc()
}

func (m *TriageMetrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}
