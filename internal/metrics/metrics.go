// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the application's Prometheus metrics.
type Collector struct {
	registrations     prometheus.Counter
	unregistrations   prometheus.Counter
	liveSubscriptions prometheus.Gauge
	httpStatus        *prometheus.CounterVec
	httpLatency       prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campus_registrations_total",
			Help: "Total successful event registrations.",
		}),
		unregistrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campus_unregistrations_total",
			Help: "Total successful event unregistrations.",
		}),
		liveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "campus_live_subscriptions",
			Help: "Currently open live query subscriptions.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "campus_http_latency_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.unregistrations,
		c.liveSubscriptions,
		c.httpStatus,
		c.httpLatency,
	)

	return c
}

// RecordRegistration counts a successful registration.
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordUnregistration counts a successful unregistration.
func (c *Collector) RecordUnregistration() {
	c.unregistrations.Inc()
}

// SubscriptionOpened tracks a live query being established.
func (c *Collector) SubscriptionOpened() {
	c.liveSubscriptions.Inc()
}

// SubscriptionClosed tracks a live query being cancelled.
func (c *Collector) SubscriptionClosed() {
	c.liveSubscriptions.Dec()
}

// RecordHTTPRequest records the status code and latency of one request.
func (c *Collector) RecordHTTPRequest(statusCode int, duration time.Duration) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
