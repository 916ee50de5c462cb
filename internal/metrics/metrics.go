// Package metrics provides Prometheus instrumentation for the settlement core.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SettlementsTotal counts applied settlements by contract kind and outcome.
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stl_settlements_total",
		Help: "Settlements applied to the ledger",
	}, []string{"kind", "result"})

	// SettlementDuration covers lock acquire through commit.
	SettlementDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stl_settlement_duration_seconds",
		Help:    "Time from lock acquire to ledger commit",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"kind"})

	// LockOutcomes counts acquire attempts by outcome.
	LockOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stl_lock_acquire_total",
		Help: "Distributed lock acquire attempts",
	}, []string{"outcome"})

	// JobOutcomes counts resolution job attempts by how they ended.
	JobOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stl_jobs_total",
		Help: "Resolution job attempts by outcome",
	}, []string{"outcome"})

	// QueueDepth mirrors the last observed queue counts.
	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stl_queue_depth",
		Help: "Resolution queue size by state",
	}, []string{"state"})

	// SweepRequeued counts contracts recovered by the sweep.
	SweepRequeued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stl_sweep_requeued_total",
		Help: "Expired contracts re-enqueued by the recovery sweep",
	})

	// AMLChecks counts check results by type and result.
	AMLChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stl_aml_checks_total",
		Help: "AML checks evaluated",
	}, []string{"check_type", "result"})

	// AccountsFrozen counts freezes that changed account state.
	AccountsFrozen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stl_accounts_frozen_total",
		Help: "Accounts frozen by the AML engine",
	})

	// PriceReads counts cache lookups by freshness.
	PriceReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stl_price_reads_total",
		Help: "Price cache reads by freshness",
	}, []string{"freshness"})

	// FeedReconnects counts market feed reconnect attempts.
	FeedReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stl_feed_reconnects_total",
		Help: "Market feed reconnect attempts",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stl_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stl_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// GinMiddleware records request metrics labelled by route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
