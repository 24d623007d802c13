// Package telemetry provides application-level observability for orgboard.
//
// All metrics are registered against the default Prometheus registry and are
// served by the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<OBD_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is NOT served by the Gin router, so the
// application port never exposes operational data.
//
// HTTP metrics are labelled by c.FullPath() (route template such as
// /api/organizations), not the raw URL, to keep label cardinality bounded.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//   - p99 latency per route:             histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Authentication metrics.
//
// LoginsTotal and RegistrationsTotal carry an {outcome} label with values
// "success" and "failure". A rising failure rate on logins_total is the first
// signal of a credential stuffing run.
//
// Example PromQL queries:
//   - Login failure rate:   rate(logins_total{outcome="failure"}[5m])
//   - Signup volume (24h):  increase(registrations_total{outcome="success"}[24h])
var (
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total number of login attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Total number of registration attempts, by outcome.",
		},
		[]string{"outcome"},
	)
)

// SessionsPurgedTotal counts sessions removed by the expiry sweeper job. A
// stalled counter while sessions keep being created means the sweeper died.
var SessionsPurgedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "sessions_purged_total",
		Help: "Total number of expired sessions removed by the background sweeper.",
	},
)

// DBOpenConnections is a Gauge that tracks the number of open connections
// currently held by the sql.DB connection pool. It is sampled every 30 seconds
// by StartDBStatsCollector rather than per-request.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB
// connection pool statistics every 30 seconds and updates the
// DBOpenConnections gauge. The goroutine exits when the database becomes
// unreachable, which happens when the application shuts down and closes db.
//
// Call this once, immediately after the database connection succeeds in main.go.
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
