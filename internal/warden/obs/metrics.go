// Package obs holds the process-wide observability collaborators: prometheus
// metrics and the HTTP instrumentation middleware. Components receive these
// as ordinary package functions, never as hidden singletons with behaviour.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "warden_http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_http_requests_total",
			Help: "Total number of HTTP requests by matched route.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warden_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds by matched route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	authDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_auth_decisions_total",
			Help: "Access decisions by outcome and deny reason.",
		},
		[]string{"outcome", "reason"},
	)

	tokensIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_tokens_issued_total",
			Help: "Tokens issued by kind (session, action).",
		},
		[]string{"kind"},
	)

	sessionRotations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warden_session_rotations_total",
		Help: "Successful refresh-token rotations.",
	})

	sessionRevocations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warden_session_revocations_total",
		Help: "Session records revoked (logout and logout-all).",
	})
)

// Init registers all metrics with the default registry. Call once at startup.
func Init() {
	prometheus.MustRegister(
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
		authDecisions,
		tokensIssued,
		sessionRotations,
		sessionRevocations,
	)
}

// Handler returns the prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDecision counts one access decision.
func RecordDecision(outcome, reason string) {
	authDecisions.WithLabelValues(outcome, reason).Inc()
}

// RecordTokensIssued counts issued tokens by kind.
func RecordTokensIssued(kind string) {
	tokensIssued.WithLabelValues(kind).Inc()
}

// RecordRotation counts one successful refresh rotation.
func RecordRotation() {
	sessionRotations.Inc()
}

// RecordRevocation counts n revoked sessions.
func RecordRevocation(n int) {
	sessionRevocations.Add(float64(n))
}

// Instrument wraps a handler with RPS/in-flight accounting.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)

		// The mux fills in r.Pattern during dispatch. Labelling on the
		// pattern keeps cardinality bounded by the route table; raw paths
		// with embedded ids would grow without limit.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}

		status := strconv.Itoa(sw.code)
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
