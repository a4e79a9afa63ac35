package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "navproxy",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "navproxy",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "navproxy",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Upstream provider metrics
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "navproxy",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Total upstream provider requests by outcome",
	}, []string{"provider", "outcome"})

	ProviderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "navproxy",
		Subsystem: "provider",
		Name:      "request_duration_seconds",
		Help:      "Upstream provider request latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"provider"})

	// Presence metrics
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "navproxy",
		Subsystem: "presence",
		Name:      "active_connections",
		Help:      "Current number of open socket connections",
	})

	IdentifiedUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "navproxy",
		Subsystem: "presence",
		Name:      "identified_users",
		Help:      "Current number of joined presence sessions",
	})

	PresenceEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "navproxy",
		Subsystem: "presence",
		Name:      "events_total",
		Help:      "Total presence events processed by type",
	}, []string{"event"})

	MalformedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "navproxy",
		Subsystem: "presence",
		Name:      "malformed_events_total",
		Help:      "Total socket events dropped as malformed",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// ObserveProvider records one upstream call.
func ObserveProvider(provider, outcome string, elapsed time.Duration) {
	ProviderRequests.WithLabelValues(provider, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}
