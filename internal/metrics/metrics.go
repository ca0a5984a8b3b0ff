package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultInvalid  = "invalid"
	ResultNotFound = "not_found"
	ResultHit      = "hit"
	ResultMiss     = "miss"
)

// Metrics holds the collectors of the service
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Application Metrics
	LinksCreatedTotal    *prometheus.CounterVec
	RedirectsTotal       *prometheus.CounterVec
	ClickIncrementsTotal *prometheus.CounterVec
	CodeCollisionsTotal  prometheus.Counter
	CacheLookupsTotal    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers all collectors on reg. reg must not already hold them.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LinksCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "links_created_total",
				Help: "Total number of short link creation attempts by result",
			},
			[]string{"result"},
		),
		RedirectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redirects_total",
				Help: "Total number of short code resolutions by result",
			},
			[]string{"result"},
		),
		ClickIncrementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "click_increments_total",
				Help: "Total number of click count increments by result",
			},
			[]string{"result"},
		),
		CodeCollisionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "code_collisions_total",
				Help: "Total number of generated short codes that were already taken",
			},
		),
		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "url_cache_lookups_total",
				Help: "Total number of URL cache lookups by result",
			},
			[]string{"result"},
		),
		gatherer: reg,
	}
}

// NewUnregistered returns metrics on a private registry, for callers that
// never expose them.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
