package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/j26/auth-demo/config"
	"github.com/j26/auth-demo/internal/observability/prom"
	"github.com/j26/auth-demo/internal/observability/statsd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the sinks upstream calls report to.
type Metrics struct {
	// Sink fans out to StatsD and Prometheus, whichever are enabled.
	Sink statsd.Sink
	// Handler serves the Prometheus registry; nil when Prometheus is disabled.
	Handler http.Handler

	statsd *statsd.Client
}

// NewMetrics wires the StatsD client and, when enabled, a private Prometheus
// registry with the Go runtime collectors.
func NewMetrics(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (*Metrics, error) {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create statsd client: %w", err)
	}

	m := &Metrics{statsd: client}
	sinks := statsd.Multi{client}

	if cfg.PrometheusEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sinks = append(sinks, prom.NewSink(promNamespace(cfg.Prefix), registry))
		m.Handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}
	m.Sink = sinks
	return m, nil
}

// Close releases the StatsD connection.
func (m *Metrics) Close() error {
	if m == nil {
		return nil
	}
	return m.statsd.Close()
}

// promNamespace turns a StatsD prefix such as "authdemo.web" into a valid
// Prometheus namespace.
func promNamespace(prefix string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, prefix)
}
