package telemetry

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "storefront"

// Metrics holds the Prometheus collectors of the shop. It implements the
// recorder interfaces of the cache, the invalidation handler, the event bus
// and the criteria checker.
type Metrics struct {
	registry *prometheus.Registry

	cacheRequests   *prometheus.CounterVec
	invalidations   *prometheus.CounterVec
	invalidatedKeys prometheus.Counter
	criteriaChecks  *prometheus.CounterVec
	eventsHandled   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpInFlight    prometheus.Gauge
}

// NewMetrics creates the collectors on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Cache invalidations by triggering event and scope.",
		}, []string{"event", "scope"}),
		invalidatedKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "invalidated_keys_total",
			Help:      "Number of cache keys deleted by invalidations.",
		}),
		criteriaChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "criteria",
			Name:      "checks_total",
			Help:      "Criteria list evaluations by owner type and result.",
		}, []string{"owner", "result"}),
		eventsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "events",
			Name:      "handled_total",
			Help:      "Domain event handler invocations by event type and result.",
		}, []string{"event", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
	}

	m.registry.MustRegister(
		m.cacheRequests,
		m.invalidations,
		m.invalidatedKeys,
		m.criteriaChecks,
		m.eventsHandled,
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RegisterDB exports the connection pool statistics of db
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// CacheHit counts a hit in the given tier
func (m *Metrics) CacheHit(tier string) {
	m.cacheRequests.WithLabelValues(tier, "hit").Inc()
}

// CacheMiss counts a miss in the given tier
func (m *Metrics) CacheMiss(tier string) {
	m.cacheRequests.WithLabelValues(tier, "miss").Inc()
}

// Invalidated counts one invalidation run
func (m *Metrics) Invalidated(eventType string, keys int, all bool) {
	scope := "keys"
	if all {
		scope = "all"
	}
	m.invalidations.WithLabelValues(eventType, scope).Inc()
	m.invalidatedKeys.Add(float64(keys))
}

// CriteriaChecked counts one criteria list evaluation
func (m *Metrics) CriteriaChecked(owner criteria.OwnerType, valid bool) {
	m.criteriaChecks.WithLabelValues(string(owner), strconv.FormatBool(valid)).Inc()
}

// EventHandled counts one event handler invocation
func (m *Metrics) EventHandled(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsHandled.WithLabelValues(eventType, result).Inc()
}

// RequestStarted tracks an in-flight request; the returned func records it
// once the status is known.
func (m *Metrics) RequestStarted(method, route string) func(status int) {
	start := time.Now()
	m.httpInFlight.Inc()
	return func(status int) {
		m.httpInFlight.Dec()
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

var _ criteria.Observer = (*Metrics)(nil)
