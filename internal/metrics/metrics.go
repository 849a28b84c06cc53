// Package metrics implements the observability hooks with Prometheus
// collectors and serves them over HTTP.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/archview/pkg/observability"
)

const namespace = "archview"

const (
	// OutcomeSuccess labels operations that returned no error.
	OutcomeSuccess = "success"
	// OutcomeError labels failed operations.
	OutcomeError = "error"
)

// Metrics holds the archview collectors. It implements
// [observability.PipelineHooks], [observability.CacheHooks] and
// [observability.HTTPHooks].
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	loads        *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec

	layouts        *prometheus.CounterVec
	layoutDuration *prometheus.HistogramVec
	layoutNodes    prometheus.Histogram
	fallbacks      prometheus.Counter

	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec

	cacheRequests *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg.
// A nil reg uses a fresh registry that also exports Go runtime and
// process metrics.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		gatherer: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, partitioned by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_loads_total",
			Help:      "Catalog snapshots loaded, partitioned by backend and outcome.",
		}, []string{"backend", "outcome"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_load_seconds",
			Help:      "Catalog snapshot load latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend"}),
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Layouts computed, partitioned by the strategy that produced them and outcome.",
		}, []string{"strategy", "outcome"}),
		layoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_seconds",
			Help:      "Layout latency in seconds, including any fallback.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"strategy"}),
		layoutNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_nodes",
			Help:      "Number of systems per layout request.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_fallbacks_total",
			Help:      "Layered layouts that failed and were replaced by the grid layout.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Diagrams rendered, partitioned by format and outcome.",
		}, []string{"format", "outcome"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_seconds",
			Help:      "Render latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Artifact cache lookups, partitioned by key type and result.",
		}, []string{"type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the artifact cache.",
		}, []string{"type"}),
	}

	collectors := []prometheus.Collector{
		m.httpRequests, m.httpDuration,
		m.loads, m.loadDuration,
		m.layouts, m.layoutDuration, m.layoutNodes, m.fallbacks,
		m.renders, m.renderDuration,
		m.cacheRequests, m.cacheBytes,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Install registers m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

func seconds(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return d.Seconds()
}

// =============================================================================
// Pipeline
// =============================================================================

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, backend string, _ int, d time.Duration, err error) {
	m.loads.WithLabelValues(backend, outcome(err)).Inc()
	m.loadDuration.WithLabelValues(backend).Observe(seconds(d))
}

func (m *Metrics) OnLayoutStart(_ context.Context, nodeCount int) {
	m.layoutNodes.Observe(float64(nodeCount))
}

func (m *Metrics) OnLayoutComplete(_ context.Context, strategy string, d time.Duration, err error) {
	if strategy == "" {
		strategy = "none"
	}
	m.layouts.WithLabelValues(strategy, outcome(err)).Inc()
	m.layoutDuration.WithLabelValues(strategy).Observe(seconds(d))
}

func (m *Metrics) OnLayoutFallback(context.Context, error) {
	m.fallbacks.Inc()
}

func (m *Metrics) OnRenderStart(context.Context, string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	m.renders.WithLabelValues(format, outcome(err)).Inc()
	m.renderDuration.WithLabelValues(format).Observe(seconds(d))
}

// =============================================================================
// Cache
// =============================================================================

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// HTTP
// =============================================================================

func (m *Metrics) OnRequest(context.Context, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds(d))
}
