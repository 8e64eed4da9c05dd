// Package metrics exposes the pipeline's operational telemetry: a Prometheus
// recorder for counters and latencies, an optional scrape endpoint, and an
// OTLP trace exporter.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

// Recorder records pipeline-level metrics.
type Recorder interface {
	// RecordCycle observes one full ingestion cycle.
	RecordCycle(duration time.Duration, failed bool)
	// RecordBatch counts a processed unit batch: raw records consumed and
	// hourly rows produced.
	RecordBatch(source string, records, aggregates int)
	// RecordUnitError counts a unit failure in the named stage.
	RecordUnitError(source, stage string)
	// RecordDelivery observes one upload attempt.
	RecordDelivery(duration time.Duration, failed bool)
	// GetRegistry returns the backing Prometheus registry for scraping.
	GetRegistry() *prometheus.Registry
}

// PrometheusRecorder is the Prometheus implementation of Recorder.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	// Cycle metrics
	cycleDurationSeconds *prometheus.HistogramVec
	cycleStatusCounter   *prometheus.CounterVec

	// Unit metrics
	recordsConsumed    *prometheus.CounterVec
	aggregatesProduced *prometheus.CounterVec
	unitErrorCounter   *prometheus.CounterVec

	// Delivery metrics
	deliveryDurationSeconds *prometheus.HistogramVec
	deliveryStatusCounter   *prometheus.CounterVec
}

// NewPrometheusRecorder creates a new instance of PrometheusRecorder.
func NewPrometheusRecorder() Recorder {
	registry := prometheus.NewRegistry()

	// Register Go standard metrics and process/OS metrics.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		cycleDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uplink_cycle_duration_seconds",
			Help:    "Duration of ingestion cycles.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		cycleStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uplink_cycle_total",
			Help: "Total number of ingestion cycles by status.",
		}, []string{"status"}),
		recordsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uplink_records_consumed_total",
			Help: "Total raw observations consumed by source.",
		}, []string{"source"}),
		aggregatesProduced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uplink_hourly_rows_total",
			Help: "Total hourly aggregate rows produced by source.",
		}, []string{"source"}),
		unitErrorCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uplink_unit_errors_total",
			Help: "Total unit failures by source and stage.",
		}, []string{"source", "stage"}),
		deliveryDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uplink_delivery_duration_seconds",
			Help:    "Duration of ingestion API uploads.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		deliveryStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uplink_delivery_total",
			Help: "Total ingestion API uploads by status.",
		}, []string{"status"}),
	}

	registry.MustRegister(r.cycleDurationSeconds)
	registry.MustRegister(r.cycleStatusCounter)
	registry.MustRegister(r.recordsConsumed)
	registry.MustRegister(r.aggregatesProduced)
	registry.MustRegister(r.unitErrorCounter)
	registry.MustRegister(r.deliveryDurationSeconds)
	registry.MustRegister(r.deliveryStatusCounter)

	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

func statusLabel(failed bool) string {
	if failed {
		return "failed"
	}
	return "completed"
}

// RecordCycle observes one full ingestion cycle.
func (r *PrometheusRecorder) RecordCycle(duration time.Duration, failed bool) {
	status := statusLabel(failed)
	r.cycleDurationSeconds.WithLabelValues(status).Observe(duration.Seconds())
	r.cycleStatusCounter.WithLabelValues(status).Inc()
	logger.Debugf("Metrics: cycle %s in %.3fs.", status, duration.Seconds())
}

// RecordBatch counts a processed unit batch.
func (r *PrometheusRecorder) RecordBatch(source string, records, aggregates int) {
	r.recordsConsumed.WithLabelValues(source).Add(float64(records))
	r.aggregatesProduced.WithLabelValues(source).Add(float64(aggregates))
}

// RecordUnitError counts a unit failure in the named stage.
func (r *PrometheusRecorder) RecordUnitError(source, stage string) {
	r.unitErrorCounter.WithLabelValues(source, stage).Inc()
}

// RecordDelivery observes one upload attempt.
func (r *PrometheusRecorder) RecordDelivery(duration time.Duration, failed bool) {
	status := statusLabel(failed)
	r.deliveryDurationSeconds.WithLabelValues(status).Observe(duration.Seconds())
	r.deliveryStatusCounter.WithLabelValues(status).Inc()
}
