// Package metrics exposes Prometheus collectors for uploads, deletions,
// retention sweeps and HTTP traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "filedrop"

// Result labels.
const (
	ResultOK          = "ok"
	ResultNotFound    = "not_found"
	ResultInvalid     = "invalid"
	ResultTooLarge    = "too_large"
	ResultAborted     = "aborted"
	ResultStorageFail = "storage_error"
)

// Metrics holds every collector, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	uploads         *prometheus.CounterVec
	uploadedBytes   prometheus.Counter
	deletes         *prometheus.CounterVec
	evictions       prometheus.Counter
	sweepFailures   prometheus.Counter
	sweepDuration   prometheus.Histogram
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Upload attempts by result.",
		}, []string{"result"}),
		uploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes committed by successful uploads.",
		}),
		deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletes_total",
			Help:      "Explicit delete requests by result.",
		}, []string{"result"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Files removed by the retention sweep.",
		}),
		sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_entry_failures_total",
			Help:      "Per-entry failures during retention sweeps.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of retention sweep cycles.",
			Buckets:   prometheus.DefBuckets,
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.uploads,
		m.uploadedBytes,
		m.deletes,
		m.evictions,
		m.sweepFailures,
		m.sweepDuration,
		m.requests,
		m.requestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveUpload counts one upload attempt.
func (m *Metrics) ObserveUpload(result string, bytes int64) {
	m.uploads.WithLabelValues(result).Inc()
	if result == ResultOK && bytes > 0 {
		m.uploadedBytes.Add(float64(bytes))
	}
}

// ObserveDelete counts one explicit delete.
func (m *Metrics) ObserveDelete(result string) {
	m.deletes.WithLabelValues(result).Inc()
}

// ObserveSweep records one completed sweep cycle.
func (m *Metrics) ObserveSweep(d time.Duration, evicted, failed int) {
	m.sweepDuration.Observe(d.Seconds())
	m.evictions.Add(float64(evicted))
	m.sweepFailures.Add(float64(failed))
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	m.requests.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
