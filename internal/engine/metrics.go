package engine

import "github.com/prometheus/client_golang/prometheus"

// Metric label values for step outcomes.
const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeSkipped   = "skipped"
)

var (
	stepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foldpipe_step_duration_seconds",
			Help:    "Duration of executed pipeline steps, in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 10),
		},
	)

	stepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foldpipe_steps_total",
			Help: "Total number of pipeline steps by outcome.",
		},
		[]string{"outcome"},
	)

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foldpipe_runs_total",
			Help: "Total number of prediction and analysis runs by final status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(stepDuration)
	prometheus.MustRegister(stepsTotal)
	prometheus.MustRegister(runsTotal)

	// Pre-initialize label combinations so they appear in /metrics
	// before the first step runs.
	for _, outcome := range []string{outcomeSucceeded, outcomeFailed, outcomeSkipped} {
		stepsTotal.WithLabelValues(outcome)
	}
}
