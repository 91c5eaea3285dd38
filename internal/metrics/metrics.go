// Package metrics exposes Prometheus metrics for generation runs and
// plugin hooks.
package metrics

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harun/ghprofile/pkg/plugin"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	// Plugin metrics
	HookInvocationsTotal *prometheus.CounterVec
	HookDuration         *prometheus.HistogramVec
	PluginsEnabled       prometheus.Gauge

	// Generation metrics
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	LastSuccess        prometheus.Gauge

	// Asset metrics
	AssetsLocalizedTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		HookInvocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghprofile_plugin_hook_invocations_total",
				Help: "Total number of plugin hook invocations",
			},
			[]string{"plugin_id", "hook", "outcome"},
		),
		HookDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ghprofile_plugin_hook_duration_seconds",
				Help:    "Duration of plugin hook invocations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"plugin_id", "hook"},
		),
		PluginsEnabled: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ghprofile_plugins_enabled",
				Help: "Number of plugins enabled for the last run",
			},
		),

		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghprofile_generations_total",
				Help: "Total number of README generations",
			},
			[]string{"template", "status"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ghprofile_generation_duration_seconds",
				Help:    "Duration of README generations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"template"},
		),
		LastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ghprofile_last_success_timestamp_seconds",
				Help: "Unix time of the last successful generation",
			},
		),

		AssetsLocalizedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ghprofile_assets_localized_total",
				Help: "Total number of remote images downloaded into the assets directory",
			},
		),
	}

	m.registerMetrics()

	return m
}

func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.HookInvocationsTotal)
	m.registry.MustRegister(m.HookDuration)
	m.registry.MustRegister(m.PluginsEnabled)

	m.registry.MustRegister(m.GenerationsTotal)
	m.registry.MustRegister(m.GenerationDuration)
	m.registry.MustRegister(m.LastSuccess)

	m.registry.MustRegister(m.AssetsLocalizedTotal)
}

// ObserveHook implements plugin.HookObserver
func (m *Metrics) ObserveHook(pluginID string, hook plugin.Hook, outcome plugin.Outcome, duration time.Duration) {
	m.HookInvocationsTotal.WithLabelValues(pluginID, string(hook), string(outcome)).Inc()
	m.HookDuration.WithLabelValues(pluginID, string(hook)).Observe(duration.Seconds())
}

// ObserveGeneration records one generation run
func (m *Metrics) ObserveGeneration(templateID string, err error, duration time.Duration, at time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.GenerationsTotal.WithLabelValues(templateID, status).Inc()
	m.GenerationDuration.WithLabelValues(templateID).Observe(duration.Seconds())
	if err == nil {
		m.LastSuccess.Set(float64(at.Unix()))
	}
}

// ObserveAssets records n localized images
func (m *Metrics) ObserveAssets(n int) {
	m.AssetsLocalizedTotal.Add(float64(n))
}

// SetPluginsEnabled records how many plugins the current run enabled
func (m *Metrics) SetPluginsEnabled(n int) {
	m.PluginsEnabled.Set(float64(n))
}

// WriteTextfile writes all metrics in the text exposition format to path,
// for the node_exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
