package mutation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for commands. A nil *Metrics records
// nothing.
//
// Metrics:
//   - projectdeck_mutations_total{op,outcome} - commands by result; outcome
//     "error" counts commands that returned an error
//   - projectdeck_mutation_duration_seconds{op} - command latency, prompts included
type Metrics struct {
	Mutations *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
}

// NewMetrics creates command metrics registered with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectdeck_mutations_total",
				Help: "Total number of deck commands by outcome",
			},
			[]string{"op", "outcome"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "projectdeck_mutation_duration_seconds",
				Help:    "Duration of deck commands in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"op"},
		),
	}
}

func (m *Metrics) record(op string, outcome Outcome, err error, start time.Time) {
	if m == nil {
		return
	}
	label := outcome.String()
	if err != nil {
		label = "error"
	}
	m.Mutations.WithLabelValues(op, label).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
