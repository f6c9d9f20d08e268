package engine

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the prometheus collectors the driver updates once per run.
// Registered lazily via NewMetrics rather than package-level globals so
// tests can spin up independent registries.
type Metrics struct {
	RunsTotal          prometheus.Counter
	RunDuration        prometheus.Histogram
	ResidualTriples    prometheus.Gauge
	RestartsAttempted  prometheus.Counter
	BacktrackInvoked   prometheus.Counter
	FinisherImprovedBy prometheus.Gauge
}

// NewMetrics registers the run metrics against reg and returns the handles
// the driver writes to.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exam_scheduler_runs_total",
			Help: "Total number of scheduling runs attempted.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "exam_scheduler_run_duration_seconds",
			Help:    "Wall-clock duration of a full scheduling run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		ResidualTriples: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "exam_scheduler_residual_triples",
			Help: "Three-exams-in-three-days violations remaining after the last run.",
		}),
		RestartsAttempted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exam_scheduler_restarts_attempted_total",
			Help: "Total (slot order, seed) restart attempts across all runs.",
		}),
		BacktrackInvoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exam_scheduler_backtrack_invocations_total",
			Help: "Total times the bounded backtracker was invoked after DSATUR failed.",
		}),
		FinisherImprovedBy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "exam_scheduler_finisher_improvement",
			Help: "Triples removed by the finisher stage in the last run.",
		}),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.ResidualTriples,
		m.RestartsAttempted,
		m.BacktrackInvoked,
		m.FinisherImprovedBy,
	)
	return m
}
