package optimizer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rpgo/iul-planner/internal/domain"
)

// Metrics collects optimizer counters. All collectors are safe for concurrent use.
type Metrics struct {
	candidatesEvaluated *prometheus.CounterVec
	candidatesCompliant *prometheus.CounterVec
	candidatesRejected  *prometheus.CounterVec
	evaluationDuration  *prometheus.HistogramVec
	activeEvaluations   prometheus.Gauge
}

// NewMetrics creates the optimizer collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		candidatesEvaluated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iul_optimizer_candidates_evaluated_total",
				Help: "Total number of grid candidates simulated",
			},
			[]string{"strategy"},
		),
		candidatesCompliant: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iul_optimizer_candidates_compliant_total",
				Help: "Total number of grid candidates that passed every compliance test",
			},
			[]string{"strategy"},
		),
		candidatesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iul_optimizer_candidates_rejected_total",
				Help: "Rejected candidates by failed test (a candidate may fail several)",
			},
			[]string{"strategy", "reason"},
		),
		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "iul_optimizer_evaluation_duration_seconds",
				Help:    "Time to simulate and evaluate one candidate",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
			[]string{"strategy"},
		),
		activeEvaluations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "iul_optimizer_active_evaluations",
				Help: "Candidates currently being simulated",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.candidatesEvaluated,
			m.candidatesCompliant,
			m.candidatesRejected,
			m.evaluationDuration,
			m.activeEvaluations,
		)
	}
	return m
}

func (m *Metrics) evaluationStarted() {
	if m == nil {
		return
	}
	m.activeEvaluations.Inc()
}

func (m *Metrics) observe(strategy domain.GridStrategy, verdict domain.Verdict, elapsed time.Duration) {
	if m == nil {
		return
	}
	s := string(strategy)
	m.activeEvaluations.Dec()
	m.candidatesEvaluated.WithLabelValues(s).Inc()
	m.evaluationDuration.WithLabelValues(s).Observe(elapsed.Seconds())
	if verdict.Compliant {
		m.candidatesCompliant.WithLabelValues(s).Inc()
		return
	}
	for _, reason := range verdict.FailedTests() {
		m.candidatesRejected.WithLabelValues(s, string(reason)).Inc()
	}
}
