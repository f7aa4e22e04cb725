package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for poll cycles and chart loads.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
	OutcomeStale  = "stale"
)

// Metrics instruments the dashboard's own behaviour. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	polls      *prometheus.CounterVec
	chartLoads *prometheus.CounterVec
	fetches    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		polls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sysdash",
			Name:      "poll_cycles_total",
			Help:      "Live poll cycles by outcome.",
		}, []string{"outcome"}),
		chartLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sysdash",
			Name:      "chart_loads_total",
			Help:      "History chart loads by outcome.",
		}, []string{"outcome"}),
		fetches: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sysdash",
			Name:      "fetch_duration_seconds",
			Help:      "Stats API request latency.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2, 4},
		}, []string{"endpoint", "result"}),
	}
}

// ObserveFetch records one API request. Its signature matches stats.Observer.
func (m *Metrics) ObserveFetch(endpoint string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := OutcomeOK
	if err != nil {
		result = OutcomeFailed
	}
	m.fetches.WithLabelValues(endpoint, result).Observe(elapsed.Seconds())
}

func (m *Metrics) poll(outcome string) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(outcome).Inc()
}

func (m *Metrics) chartLoad(outcome string) {
	if m == nil {
		return
	}
	m.chartLoads.WithLabelValues(outcome).Inc()
}
