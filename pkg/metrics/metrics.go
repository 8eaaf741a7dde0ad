package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the scraper services.
type Metrics struct {
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	ScrapeRequestsTotal    *prometheus.CounterVec
	ScrapeAttemptsTotal    *prometheus.CounterVec
	ScrapeDuration         *prometheus.HistogramVec
	BrowserSessionsActive  prometheus.Gauge
	SessionCleanupFailures prometheus.Counter
}

// New registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		ScrapeRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrape_requests_total",
				Help: "Total number of scrape requests by final outcome.",
			},
			[]string{"kind", "outcome"}, // outcome: success, exhausted
		),
		ScrapeAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrape_attempts_total",
				Help: "Total number of scrape attempts.",
			},
			[]string{"kind", "outcome", "error_type"},
		),
		ScrapeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scrape_duration_seconds",
				Help:    "Duration of complete scrape requests including retries.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
			},
			[]string{"kind", "host"},
		),
		BrowserSessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "browser_sessions_active",
				Help: "Current number of open headless browser sessions.",
			},
		),
		SessionCleanupFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "browser_session_cleanup_failures_total",
				Help: "Total number of browser sessions that failed to close cleanly.",
			},
		),
	}
}

func (m *Metrics) ObserveAttempt(kind, outcome, errorType string) {
	m.ScrapeAttemptsTotal.WithLabelValues(kind, outcome, errorType).Inc()
}

func (m *Metrics) ObserveRequest(kind, outcome, host string, seconds float64) {
	m.ScrapeRequestsTotal.WithLabelValues(kind, outcome).Inc()
	m.ScrapeDuration.WithLabelValues(kind, host).Observe(seconds)
}

// Discard returns collectors registered on a private registry, for callers
// that do not export metrics.
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}
