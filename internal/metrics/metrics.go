// Package metrics holds the Prometheus collectors of the server.
//
// Every Metrics value owns its registry, so tests can build as many as they
// like without "duplicate metrics collector registration" panics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mydevjourney"

// Metrics is the set of collectors the server records into.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	upstreamFailures    *prometheus.CounterVec
	goalsCreated        prometheus.Counter
	goalsDeleted        prometheus.Counter
	progressRecorded    *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, together with the
// standard Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upstreamFailures: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "github",
			Name:      "upstream_failures_total",
			Help:      "GitHub API calls that failed and were answered with default values.",
		}, []string{"operation"}),
		goalsCreated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "goals_created_total",
			Help:      "Goals created.",
		}),
		goalsDeleted: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "goals_deleted_total",
			Help:      "Goals deleted together with their progress.",
		}),
		progressRecorded: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_recorded_total",
			Help:      "Progress records written, by whether the day was achieved.",
		}, []string{"achieved"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served HTTP request. route is the chi route
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// UpstreamFailure counts a failed GitHub call for operation ("stats", "recap").
func (m *Metrics) UpstreamFailure(operation string) {
	if m == nil {
		return
	}
	m.upstreamFailures.WithLabelValues(operation).Inc()
}

// GoalCreated counts a created goal.
func (m *Metrics) GoalCreated() {
	if m == nil {
		return
	}
	m.goalsCreated.Inc()
}

// GoalDeleted counts a deleted goal.
func (m *Metrics) GoalDeleted() {
	if m == nil {
		return
	}
	m.goalsDeleted.Inc()
}

// ProgressRecorded counts a written progress record.
func (m *Metrics) ProgressRecorded(achieved bool) {
	if m == nil {
		return
	}
	m.progressRecorded.WithLabelValues(strconv.FormatBool(achieved)).Inc()
}
