package server

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/observability"
)

const metricsNamespace = "craneplan"

// Metrics exports planner, cache and HTTP events to Prometheus. It
// implements the observability hook interfaces; Install registers it.
type Metrics struct {
	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	expanded       *prometheus.HistogramVec
	culls          *prometheus.CounterVec

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inflight        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Labels: goal (balance, load), outcome (ok or lower-case error code)
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "planner",
			Name:      "searches_total",
			Help:      "Completed searches by goal and outcome",
		}, []string{"goal", "outcome"}),

		searchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "planner",
			Name:      "search_duration_seconds",
			Help:      "Wall time of a search",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"goal"}),

		expanded: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "planner",
			Name:      "expanded_states",
			Help:      "States expanded per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"goal"}),

		culls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "planner",
			Name:      "culled_states_total",
			Help:      "Frontier states moved to the reserve",
		}, []string{"goal"}),

		// Labels: kind (balance, load), event (hit, miss, set)
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Plan cache lookups and writes",
		}, []string{"kind", "event"}),

		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the plan cache",
		}, []string{"kind"}),

		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		inflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Requests currently being served",
		}),
	}
}

// Install registers m as the process-wide planner, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPlannerHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) OnSearchStart(context.Context, string, int) {}

func (m *Metrics) OnCull(_ context.Context, goal string, moved int) {
	m.culls.WithLabelValues(goal).Add(float64(moved))
}

func (m *Metrics) OnSearchComplete(_ context.Context, goal string, expanded int, d time.Duration, err error) {
	m.searches.WithLabelValues(goal, outcome(err)).Inc()
	m.searchDuration.WithLabelValues(goal).Observe(d.Seconds())
	m.expanded.WithLabelValues(goal).Observe(float64(expanded))
}

func (m *Metrics) OnCacheHit(_ context.Context, kind string) {
	m.cacheEvents.WithLabelValues(kind, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, kind string) {
	m.cacheEvents.WithLabelValues(kind, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, kind string, size int) {
	m.cacheEvents.WithLabelValues(kind, "set").Inc()
	m.cacheBytes.WithLabelValues(kind).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.inflight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inflight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errs.GetCode(err); code != "" {
		return strings.ToLower(string(code))
	}
	return "error"
}

var (
	_ observability.PlannerHooks = (*Metrics)(nil)
	_ observability.CacheHooks   = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)
