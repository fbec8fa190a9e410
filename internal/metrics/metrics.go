package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hn_trigger"

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the trigger collectors. All methods are safe for concurrent use.
type Metrics struct {
	dispatches   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	unauthorized prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Workflow dispatch attempts by invocation source and result.",
		}, []string{"source", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Latency of workflow dispatch calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		unauthorized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unauthorized_total",
			Help:      "Trigger requests rejected for a missing or wrong secret.",
		}),
	}
	reg.MustRegister(m.dispatches, m.duration, m.unauthorized)
	return m
}

// ObserveDispatch records one dispatch attempt.
func (m *Metrics) ObserveDispatch(source string, elapsed time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.dispatches.WithLabelValues(source, result).Inc()
	m.duration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// IncUnauthorized records a rejected trigger request.
func (m *Metrics) IncUnauthorized() {
	m.unauthorized.Inc()
}
