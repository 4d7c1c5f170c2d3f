// Package observability wires prometheus instrumentation.
package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application's prometheus instruments.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	schedulerRuns     *prometheus.CounterVec
	schedulerFailures *prometheus.CounterVec

	priceChecks *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mesterwork_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mesterwork_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		schedulerRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mesterwork_scheduler_runs_total",
			Help: "Scheduler job executions by job name.",
		}, []string{"job"}),
		schedulerFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mesterwork_scheduler_failures_total",
			Help: "Scheduler job failures by job name.",
		}, []string{"job"}),
		priceChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mesterwork_price_checks_total",
			Help: "Market price checks by outcome.",
		}, []string{"status"}),
	}
}

// GinMiddleware records request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) IncSchedulerRun(job string) {
	m.schedulerRuns.WithLabelValues(job).Inc()
}

func (m *Metrics) IncSchedulerFailure(job string) {
	m.schedulerFailures.WithLabelValues(job).Inc()
}

func (m *Metrics) IncPriceCheck(status string) {
	m.priceChecks.WithLabelValues(status).Inc()
}
