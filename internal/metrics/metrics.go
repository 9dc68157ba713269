// Package metrics exposes poll-cycle counters over Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg            *prometheus.Registry
	RunsTotal      prometheus.Counter
	RunFailures    prometheus.Counter
	AlertsTotal    prometheus.Counter
	Products       prometheus.Gauge
	RunDurationSec prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounter(prometheus.CounterOpts{Name: "watcher_runs_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "watcher_run_failures_total"})
	alerts := prometheus.NewCounter(prometheus.CounterOpts{Name: "watcher_alerts_total"})
	products := prometheus.NewGauge(prometheus.GaugeOpts{Name: "watcher_snapshot_products"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "watcher_run_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(runs, failures, alerts, products, duration)
	return &Registry{
		reg:            r,
		RunsTotal:      runs,
		RunFailures:    failures,
		AlertsTotal:    alerts,
		Products:       products,
		RunDurationSec: duration,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
