package prom

import (
	"time"

	"github.com/j26/auth-demo/internal/observability/statsd"
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names accepted by Sink; anything else is dropped.
const (
	authCallCount    = "auth.call"
	authCallDuration = "auth.call.duration"
)

var authCallLabels = []string{"operation", "result", "error_class"}

// Sink exposes the application's metrics as Prometheus collectors so the
// server can publish them on /metrics next to (or instead of) StatsD.
type Sink struct {
	authCalls   *prometheus.CounterVec
	authLatency *prometheus.HistogramVec
}

var _ statsd.Sink = (*Sink)(nil)

// NewSink creates the collectors and registers them with registerer.
// If registerer is nil, prometheus.DefaultRegisterer is used.
func NewSink(namespace string, registerer prometheus.Registerer) *Sink {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	s := &Sink{
		authCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "calls_total",
				Help:      "Total number of calls made to the authentication service",
			},
			authCallLabels,
		),
		authLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "call_duration_seconds",
				Help:      "Latency of calls made to the authentication service",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			authCallLabels,
		),
	}

	registerer.MustRegister(s.authCalls, s.authLatency)
	return s
}

// Count implements statsd.Sink.
func (s *Sink) Count(name string, value int64, tags map[string]string) {
	if s == nil || name != authCallCount || value <= 0 {
		return
	}
	s.authCalls.WithLabelValues(labelValues(tags)...).Add(float64(value))
}

// Timing implements statsd.Sink.
func (s *Sink) Timing(name string, value time.Duration, tags map[string]string) {
	if s == nil || name != authCallDuration {
		return
	}
	s.authLatency.WithLabelValues(labelValues(tags)...).Observe(value.Seconds())
}

func labelValues(tags map[string]string) []string {
	out := make([]string, len(authCallLabels))
	for i, name := range authCallLabels {
		out[i] = tags[name]
	}
	return out
}
