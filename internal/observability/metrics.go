package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the dispatch loop and the ops API.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
	messagesSentTotal        prometheus.Counter
	sendFailuresTotal        *prometheus.CounterVec
	leadsSkippedTotal        *prometheus.CounterVec
	sendDuration             prometheus.Histogram
	endpointProbeFailures    *prometheus.CounterVec
	queueDepth               prometheus.Gauge
	dispatchPaused           prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lead_dispatcher",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lead_dispatcher",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		messagesSentTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "lead_dispatcher",
				Name:      "messages_sent_total",
				Help:      "Total number of messages sent successfully.",
			},
		),
		sendFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lead_dispatcher",
				Name:      "send_failures_total",
				Help:      "Total number of failed send attempts by reason.",
			},
			[]string{"reason"},
		),
		leadsSkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lead_dispatcher",
				Name:      "leads_skipped_total",
				Help:      "Total number of leads skipped before sending, by reason.",
			},
			[]string{"reason"},
		),
		sendDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "lead_dispatcher",
				Name:      "send_duration_seconds",
				Help:      "Endpoint send duration in seconds, health probe included.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		endpointProbeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lead_dispatcher",
				Name:      "endpoint_probe_failures_total",
				Help:      "Total number of failed endpoint health probes by endpoint.",
			},
			[]string{"endpoint"},
		),
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "lead_dispatcher",
				Name:      "queue_depth",
				Help:      "Number of leads still pending dispatch.",
			},
		),
		dispatchPaused: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "lead_dispatcher",
				Name:      "dispatch_paused",
				Help:      "1 while dispatch is paused outside business hours, 0 otherwise.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.messagesSentTotal,
		m.sendFailuresTotal,
		m.leadsSkippedTotal,
		m.sendDuration,
		m.endpointProbeFailures,
		m.queueDepth,
		m.dispatchPaused,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncMessageSent() {
	if m == nil {
		return
	}
	m.messagesSentTotal.Inc()
}

func (m *Metrics) IncSendFailure(reason string) {
	if m == nil {
		return
	}
	m.sendFailuresTotal.WithLabelValues(normalizeReason(reason)).Inc()
}

func (m *Metrics) IncLeadSkipped(reason string) {
	if m == nil {
		return
	}
	m.leadsSkippedTotal.WithLabelValues(normalizeReason(reason)).Inc()
}

func (m *Metrics) ObserveSendDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.sendDuration.Observe(seconds)
}

func (m *Metrics) IncEndpointProbeFailure(endpoint string) {
	if m == nil {
		return
	}
	m.endpointProbeFailures.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) SetDispatchPaused(paused bool) {
	if m == nil {
		return
	}
	if paused {
		m.dispatchPaused.Set(1)
		return
	}
	m.dispatchPaused.Set(0)
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeReason(reason string) string {
	normalized := strings.ToLower(strings.TrimSpace(reason))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
