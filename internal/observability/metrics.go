// Package observability exposes Prometheus metrics for the pipeline and the
// HTTP API.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry. A nil *Metrics is a no-op recorder.
type Metrics struct {
	reg *prometheus.Registry

	runs          *prometheus.CounterVec
	errors        *prometheus.CounterVec
	basemap       *prometheus.CounterVec
	renderSeconds *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
}

func New(version string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	if version == "" {
		version = "dev"
	}
	f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "propmap_build_info",
		Help: "Build info for this binary (value is always 1).",
	}, []string{"version"}).WithLabelValues(version).Set(1)

	return &Metrics{
		reg: reg,
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propmap_pipeline_runs_total",
			Help: "Pipeline runs by outcome (clean, fallback, error).",
		}, []string{"outcome"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propmap_pipeline_errors_total",
			Help: "Pipeline failures by error kind.",
		}, []string{"kind"}),
		basemap: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propmap_basemap_results_total",
			Help: "Basemap draws by status.",
		}, []string{"status"}),
		renderSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "propmap_render_duration_seconds",
			Help:    "Map render and encode time by variant.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"variant"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propmap_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRun(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveError(kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveBasemap(status string) {
	if m == nil {
		return
	}
	m.basemap.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRender(variant string, d time.Duration) {
	if m == nil {
		return
	}
	m.renderSeconds.WithLabelValues(variant).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
