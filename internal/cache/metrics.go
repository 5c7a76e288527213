package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the caches. A nil *Metrics is valid
// and records nothing.
//
// Metrics:
//   - projectdeck_cache_hits_total{cache}
//   - projectdeck_cache_misses_total{cache}
//   - projectdeck_cache_invalidations_total{cache,reason}
type Metrics struct {
	Hits          *prometheus.CounterVec
	Misses        *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
}

// NewMetrics creates cache metrics registered with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Hits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectdeck_cache_hits_total",
				Help: "Total number of reads served from cache",
			},
			[]string{"cache"},
		),
		Misses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectdeck_cache_misses_total",
				Help: "Total number of reads that had to load or produce the value",
			},
			[]string{"cache"},
		),
		Invalidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectdeck_cache_invalidations_total",
				Help: "Total number of cache invalidations",
			},
			[]string{"cache", "reason"},
		),
	}
}

func (m *Metrics) hit(cache string) {
	if m != nil {
		m.Hits.WithLabelValues(cache).Inc()
	}
}

func (m *Metrics) miss(cache string) {
	if m != nil {
		m.Misses.WithLabelValues(cache).Inc()
	}
}

func (m *Metrics) invalidated(cache string, reason Reason) {
	if m != nil {
		m.Invalidations.WithLabelValues(cache, string(reason)).Inc()
	}
}
