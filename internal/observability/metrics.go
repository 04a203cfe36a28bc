package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the admin.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	submissions     *prometheus.CounterVec
	referenceLoads  *prometheus.CounterVec
	viewCache       *prometheus.CounterVec
}

// NewMetrics initialises the registry and every collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "admin_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_form_submissions_total",
		Help: "Form submissions by resource and outcome.",
	}, []string{"resource", "outcome"})
	loads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_reference_loads_total",
		Help: "Reference list loads by kind and result.",
	}, []string{"kind", "result"})
	views := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_view_cache_lookups_total",
		Help: "View cache lookups by resource and result.",
	}, []string{"resource", "result"})
	registry.MustRegister(requests, duration, submissions, loads, views)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		submissions:     submissions,
		referenceLoads:  loads,
		viewCache:       views,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and duration per route.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveSubmission counts a form submission outcome.
func (m *Metrics) ObserveSubmission(resource, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(resource, outcome).Inc()
}

// ObserveReferenceLoad counts a reference list load.
func (m *Metrics) ObserveReferenceLoad(kind string, ok bool) {
	if m == nil {
		return
	}
	m.referenceLoads.WithLabelValues(kind, result(ok, "ok", "error")).Inc()
}

// ObserveViewCache counts a view cache lookup.
func (m *Metrics) ObserveViewCache(resource string, hit bool) {
	if m == nil {
		return
	}
	m.viewCache.WithLabelValues(resource, result(hit, "hit", "miss")).Inc()
}

func result(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
