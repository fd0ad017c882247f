// Package monitoring exports estimator metrics for Prometheus.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vram-calculator/core/models"
)

// MetricsExporter records estimator activity on its own registry
type MetricsExporter struct {
	registry *prometheus.Registry

	estimations     *prometheus.CounterVec
	totalVRAM       prometheus.Histogram
	multiGPU        prometheus.Counter
	intakeErrors    *prometheus.CounterVec
	exports         prometheus.Counter
	instanceLookups *prometheus.CounterVec
}

// NewMetricsExporter creates a new metrics exporter with Go and process collectors registered
func NewMetricsExporter() *MetricsExporter {
	me := &MetricsExporter{
		registry: prometheus.NewRegistry(),
		estimations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vram_estimations_total",
			Help: "Number of VRAM estimates computed.",
		}, []string{"precision", "task"}),
		totalVRAM: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vram_estimate_total_gib",
			Help:    "Total VRAM of computed estimates in GiB.",
			Buckets: []float64{1, 4, 8, 12, 16, 24, 32, 48, 80, 160, 320, 640, 1280},
		}),
		multiGPU: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vram_multi_gpu_estimations_total",
			Help: "Number of estimates that exceed every single device in the catalog.",
		}),
		intakeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vram_intake_errors_total",
			Help: "Number of rejected configurations by error kind.",
		}, []string{"kind"}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vram_exports_total",
			Help: "Number of exported calculations.",
		}),
		instanceLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vram_instance_lookups_total",
			Help: "Number of cloud instance lookups by outcome.",
		}, []string{"outcome"}),
	}

	me.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		me.estimations,
		me.totalVRAM,
		me.multiGPU,
		me.intakeErrors,
		me.exports,
		me.instanceLookups,
	)
	return me
}

// ObserveEstimate records one computed estimate. multiGPU reports whether the result
// needed a multi-card recommendation.
func (me *MetricsExporter) ObserveEstimate(cfg models.Configuration, res models.EstimationResult, multiGPU bool) {
	me.estimations.WithLabelValues(string(cfg.Precision), string(cfg.Task)).Inc()
	me.totalVRAM.Observe(float64(res.TotalVRAM))
	if multiGPU {
		me.multiGPU.Inc()
	}
}

// ObserveIntakeError records a rejected configuration
func (me *MetricsExporter) ObserveIntakeError(err error) {
	me.intakeErrors.WithLabelValues(models.ErrorKind(err)).Inc()
}

// ObserveExport records an exported calculation
func (me *MetricsExporter) ObserveExport() {
	me.exports.Inc()
}

// ObserveInstanceLookup records a cloud instance lookup
func (me *MetricsExporter) ObserveInstanceLookup(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	me.instanceLookups.WithLabelValues(outcome).Inc()
}

// Registry returns the underlying registry
func (me *MetricsExporter) Registry() *prometheus.Registry {
	return me.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (me *MetricsExporter) Handler() http.Handler {
	return promhttp.HandlerFor(me.registry, promhttp.HandlerOpts{})
}
