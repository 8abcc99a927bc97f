package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/deptree/pkg/observability"
)

// Metrics exposes analysis, cache and registry activity as Prometheus
// metrics. It implements the observability hook interfaces; [Metrics.Install]
// routes the process-wide hooks to it.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	analyses         *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	analysisNodes    prometheus.Histogram
	comparisons      *prometheus.CounterVec

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	registryRequests *prometheus.CounterVec
	registryDuration *prometheus.HistogramVec
	registryErrors   *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deptree_http_requests_total",
			Help: "API requests by route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deptree_http_request_duration_seconds",
			Help:    "API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deptree_analyses_total",
			Help: "Graph builds by mode and outcome (ok, cycle, error).",
		}, []string{"mode", "outcome"}),
		analysisDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deptree_analysis_duration_seconds",
			Help:    "Graph build time including registry fetches.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"mode"}),
		analysisNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deptree_analysis_nodes",
			Help:    "Reachable packages per analysis.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		comparisons: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deptree_npm_comparisons_total",
			Help: "Comparisons with npm ls by whether both orderings had the same package set.",
		}, []string{"same_set"}),

		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deptree_cache_events_total",
			Help: "Cache hits, misses and writes by entry type.",
		}, []string{"type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deptree_cache_written_bytes_total",
			Help: "Bytes written to the cache by entry type.",
		}, []string{"type"}),

		registryRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deptree_registry_requests_total",
			Help: "Registry responses by host and status code.",
		}, []string{"host", "status"}),
		registryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deptree_registry_request_duration_seconds",
			Help:    "Registry request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
		registryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deptree_registry_errors_total",
			Help: "Registry transport failures by host.",
		}, []string{"host"}),
	}
}

// Install makes m the receiver of all observability hooks.
func (m *Metrics) Install() {
	observability.SetAnalysisHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) OnBuildStart(context.Context, string, string) {}

func (m *Metrics) OnBuildComplete(_ context.Context, mode, _ string, nodes int, hasCycle bool, d time.Duration, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case hasCycle:
		outcome = "cycle"
	}
	m.analyses.WithLabelValues(mode, outcome).Inc()
	m.analysisDuration.WithLabelValues(mode).Observe(d.Seconds())
	if err == nil {
		m.analysisNodes.Observe(float64(nodes))
	}
}

func (m *Metrics) OnCompare(_ context.Context, _ string, sameSet bool, _ int) {
	m.comparisons.WithLabelValues(strconv.FormatBool(sameSet)).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.registryRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.registryDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.registryErrors.WithLabelValues(host).Inc()
}

var (
	_ observability.AnalysisHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
