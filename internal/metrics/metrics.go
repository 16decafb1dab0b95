// Package metrics provides Prometheus instrumentation for the fraud service.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudguard",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status bucket.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraudguard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AnalysesTotal counts transaction analyses by decision.
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudguard",
			Name:      "analyses_total",
			Help:      "Total transaction analyses by decision.",
		},
		[]string{"decision"},
	)

	// RiskScores observes the distribution of produced risk scores.
	RiskScores = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fraudguard",
		Name:      "risk_score",
		Help:      "Distribution of risk scores across analyses.",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})

	// AnalysisDuration observes end-to-end scoring latency.
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fraudguard",
		Name:      "analysis_duration_seconds",
		Help:      "Transaction analysis duration in seconds.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	})

	// AlertsSentTotal counts assessments broadcast to alert subscribers.
	AlertsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fraudguard",
		Name:      "alerts_sent_total",
		Help:      "Total assessments broadcast on the alerts stream.",
	})

	// ActiveWebSocketClients tracks connected alert subscribers.
	ActiveWebSocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudguard",
		Name:      "active_websocket_clients",
		Help:      "Number of currently connected alert subscribers.",
	})

	// TrackedAccounts tracks how many accounts have in-memory history.
	TrackedAccounts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudguard",
		Name:      "tracked_accounts",
		Help:      "Number of accounts with in-memory transaction history.",
	})

	// DBOpenConnections tracks open database connections.
	DBOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudguard", Name: "db_open_connections",
		Help: "Number of open database connections.",
	})
	// DBIdleConnections tracks idle database connections.
	DBIdleConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudguard", Name: "db_idle_connections",
		Help: "Number of idle database connections.",
	})
	// DBInUseConnections tracks in-use database connections.
	DBInUseConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudguard", Name: "db_in_use_connections",
		Help: "Number of in-use database connections.",
	})
	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudguard", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AnalysesTotal,
		RiskScores,
		AnalysisDuration,
		AlertsSentTotal,
		ActiveWebSocketClients,
		TrackedAccounts,
		DBOpenConnections,
		DBIdleConnections,
		DBInUseConnections,
		GoroutineCount,
	)
}

// StartDBStatsCollector periodically samples sql.DBStats and the goroutine
// count into Prometheus gauges. Call in a goroutine; exits when ctx is done.
// db may be nil (in-memory deployments); only runtime stats are sampled then.
// Extra samplers run on the same tick.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration, samplers ...func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if db != nil {
				stats := db.Stats()
				DBOpenConnections.Set(float64(stats.OpenConnections))
				DBIdleConnections.Set(float64(stats.Idle))
				DBInUseConnections.Set(float64(stats.InUse))
			}
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
			for _, sample := range samplers {
				sample()
			}
		}
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for the /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
