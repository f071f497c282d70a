// Package observability wires Prometheus metrics for the service and the
// ledger engine.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Engine counters.
	SplitsComputed       *prometheus.CounterVec
	PlansProposed        prometheus.Counter
	SettlementsConfirmed prometheus.Counter
	BalanceRecomputes    prometheus.Counter
}

// NewMetrics initializes the registry with the HTTP and engine metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitledger_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "splitledger_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	splits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitledger_splits_computed_total",
		Help: "Expense splits computed, by split type.",
	}, []string{"split_type"})
	plans := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_settlement_plans_proposed_total",
		Help: "Settlement plans proposed.",
	})
	confirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_settlements_confirmed_total",
		Help: "Settlements confirmed.",
	})
	recomputes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_balance_recomputes_total",
		Help: "Full balance aggregations performed.",
	})
	registry.MustRegister(requests, duration, splits, plans, confirmed, recomputes)
	return &Metrics{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:        requests,
		requestDuration:      duration,
		SplitsComputed:       splits,
		PlansProposed:        plans,
		SettlementsConfirmed: confirmed,
		BalanceRecomputes:    recomputes,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and duration for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
