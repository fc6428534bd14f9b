// Package metrics provides Prometheus metrics for share-viewer.
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
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "share_viewer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "share_viewer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "share_viewer_lookups_total",
			Help: "Total number of share lookups by result",
		},
		[]string{"result"},
	)

	lookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "share_viewer_lookup_duration_seconds",
			Help:    "Share lookup duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	themeToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "share_viewer_theme_changes_total",
			Help: "Total number of applied theme changes by theme",
		},
		[]string{"theme"},
	)
)

// Lookup results used as the "result" label.
const (
	LookupSuccess        = "success"
	LookupRejected       = "rejected"
	LookupTransportError = "transport_error"
)

// RecordLookup records the outcome and latency of one lookup.
func RecordLookup(result string, d time.Duration) {
	lookupDuration.Observe(d.Seconds())
	lookupsTotal.WithLabelValues(result).Inc()
}

// RecordThemeChange counts an applied theme.
func RecordThemeChange(theme string) {
	themeToggles.WithLabelValues(theme).Inc()
}

// Middleware records request counts and latency for every route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
