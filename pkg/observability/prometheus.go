package observability

import (
	"context"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ckanindex"

// Metrics implements [CatalogHooks] and [HTTPHooks] with Prometheus
// collectors on a private registry. Upstream metrics are labelled by CKAN
// action (the last path segment), never by organization or package, to keep
// label cardinality bounded.
//
//	m := observability.NewMetrics()
//	observability.SetCatalogHooks(m)
//	observability.SetHTTPHooks(m)
//	http.Handle("/metrics", m.Handler())
type Metrics struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec
	apiErrors        *prometheus.CounterVec
	listingSize      *prometheus.GaugeVec
	crawlPages       *prometheus.CounterVec
	crawlPackages    prometheus.Counter

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors, including the Go runtime and process
// collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		upstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "CKAN action requests that received a response, by action and status code.",
		}, []string{"action", "status"}),
		upstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of CKAN action requests, by action.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"action"}),
		upstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "CKAN action requests that failed without a response, by action.",
		}, []string{"action"}),
		apiErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Action responses with success=false, by action and error type.",
		}, []string{"action", "type"}),
		listingSize: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listing_size",
			Help:      "Number of names in a populated catalog listing.",
		}, []string{"listing"}),
		crawlPages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crawl_pages_total",
			Help:      "Crawl pages processed, by result (ok or failed).",
		}, []string{"result"}),
		crawlPackages: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crawl_packages_total",
			Help:      "Packages received on crawl pages.",
		}),

		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests served by the HTTP API, by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of the HTTP API, by method and route pattern.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 120},
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveRequest records one request served by the HTTP API. route should
// be the matched route pattern, not the raw URL.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) OnAPIError(_ context.Context, action, kind, _ string) {
	m.apiErrors.WithLabelValues(action, kind).Inc()
}

func (m *Metrics) OnCacheFill(_ context.Context, listing string, size int) {
	m.listingSize.WithLabelValues(listing).Set(float64(size))
}

func (m *Metrics) OnPage(_ context.Context, _ string, _ int, packages int, err error) {
	if err != nil {
		m.crawlPages.WithLabelValues("failed").Inc()
		return
	}
	m.crawlPages.WithLabelValues("ok").Inc()
	m.crawlPackages.Add(float64(packages))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, _, p string, statusCode int, duration time.Duration) {
	action := path.Base(p)
	m.upstreamRequests.WithLabelValues(action, strconv.Itoa(statusCode)).Inc()
	m.upstreamDuration.WithLabelValues(action).Observe(duration.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, _, p string, _ error) {
	m.upstreamErrors.WithLabelValues(path.Base(p)).Inc()
}

var (
	_ CatalogHooks = (*Metrics)(nil)
	_ HTTPHooks    = (*Metrics)(nil)
)
