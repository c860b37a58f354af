// Package telemetry provides application-level observability for the
// organization registry.
//
// All metrics are registered against the default Prometheus registry and are
// served on the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<ORG_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is not part of the Gin router so it stays
// off the public ingress path and is unaffected by rate limiting.
//
// HTTP metrics use c.FullPath() (route template such as /org/get) rather than
// the raw request URL so user-supplied query values never become label values.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template, and status code.
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

// Organization lifecycle metrics, recorded by the org service.
//
// OrgLifecycleOpsTotal is a CounterVec with labels {operation, outcome}.
// operation is one of create, rename, delete; outcome is success or error.
//
// Example PromQL queries:
//   - Create failure rate:  rate(org_lifecycle_operations_total{operation="create",outcome="error"}[1h])
//   - Ops by type:          sum by (operation) (rate(org_lifecycle_operations_total[1h]))
//
// RenameDivergenceTotal counts the cases where the physical collection was
// renamed but the subsequent registry update failed. There is no cross-step
// transaction, so this divergence window cannot be eliminated; it is counted
// and logged so operators can reconcile. An alert on any increase is
// recommended.
var (
	OrgLifecycleOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "org_lifecycle_operations_total",
			Help: "Total number of organization lifecycle operations, by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	RenameDivergenceTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "org_rename_divergence_total",
			Help: "Times the physical collection rename succeeded but the registry update failed.",
		},
	)

	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_login_attempts_total",
			Help: "Total number of admin login attempts, by outcome (success or failure).",
		},
		[]string{"outcome"},
	)
)

// DBOpenConnections tracks the number of open connections currently held by
// the sql.DB connection pool. It is sampled every 30 seconds rather than
// per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB
// connection pool statistics every 30 seconds and exports them as gauges.
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
			slog.Debug("db pool stats", "open", stats.OpenConnections, "in_use", stats.InUse, "idle", stats.Idle)
		}
	}()
}
