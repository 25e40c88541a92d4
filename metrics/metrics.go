// Package metrics exposes conversion and HTTP telemetry in prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/use-agent/html2pdf/models"
)

const namespace = "html2pdf"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector owns a private registry so tests and multiple instances never
// collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	conversions        *prometheus.CounterVec
	failures           *prometheus.CounterVec
	cleanupWarnings    prometheus.Counter
	conversionDuration *prometheus.HistogramVec
	inFlight           prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector with Go runtime and process collectors registered.
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.conversions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Total number of HTML to PDF conversions by outcome",
		},
		[]string{"outcome"},
	)

	c.failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversion_failures_total",
			Help:      "Total number of failed conversions by error kind",
		},
		[]string{"kind"},
	)

	c.cleanupWarnings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_warnings_total",
			Help:      "Total number of tab close or browser release failures",
		},
	)

	// Browser launch dominates; buckets span cold starts up to the print watchdog.
	c.conversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "End-to-end conversion duration",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	c.inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conversions_in_flight",
			Help:      "Conversions currently holding a browser",
		},
	)

	c.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	c.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	c.registry.MustRegister(
		c.conversions,
		c.failures,
		c.cleanupWarnings,
		c.conversionDuration,
		c.inFlight,
		c.httpRequests,
		c.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveConversion records a finished conversion; kind is "" on success.
func (c *Collector) ObserveConversion(kind models.ErrorKind, d time.Duration) {
	outcome := OutcomeSuccess
	if kind != "" {
		outcome = OutcomeFailure
		c.failures.WithLabelValues(string(kind)).Inc()
	}
	c.conversions.WithLabelValues(outcome).Inc()
	c.conversionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveCleanupWarning counts one teardown failure.
func (c *Collector) ObserveCleanupWarning() {
	c.cleanupWarnings.Inc()
}

// SetInFlight sets the number of running conversions.
func (c *Collector) SetInFlight(n int) {
	c.inFlight.Set(float64(n))
}

// ObserveHTTP records one served HTTP request.
func (c *Collector) ObserveHTTP(method, path string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	c.httpRequests.WithLabelValues(method, path, code).Inc()
	c.httpDuration.WithLabelValues(method, path, code).Observe(d.Seconds())
}
