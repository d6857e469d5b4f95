package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsSubsystem = "fieldstudio"

	HTTPRequestsTotalKey          = "http_requests_total"
	HTTPRequestDurationSecondsKey = "http_request_duration_seconds"
	HTTPRequestsInFlightKey       = "http_requests_in_flight"
)

// Metrics holds the HTTP collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	requestInFlight prometheus.Gauge
}

// NewMetrics registers the HTTP collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: metricsSubsystem,
				Name:      HTTPRequestsTotalKey,
				Help:      "Total number of HTTP requests by route and status code.",
			},
			[]string{"method", "route", "code"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: metricsSubsystem,
				Name:      HTTPRequestDurationSecondsKey,
				Help:      "Histogram of HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		requestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Subsystem: metricsSubsystem,
				Name:      HTTPRequestsInFlightKey,
				Help:      "Current number of HTTP requests being served.",
			},
		),
	}
	m.registry.MustRegister(m.requestTotal, m.requestLatency, m.requestInFlight)
	return m
}

// Middleware records every request under its route template, so path
// parameters do not create new series.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
