package http

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)
)

// パスのIDをテンプレートに置き換えてラベルのカーディナリティを抑える
var routeTemplates = []struct {
	pattern  *regexp.Regexp
	template string
}{
	{regexp.MustCompile(`^/api/articles/\d+$`), "/api/articles/{id}"},
	{regexp.MustCompile(`^/api/subscribers/[^/]+$`), "/api/subscribers/{id}"},
	{regexp.MustCompile(`^/api/options/[^/]+$`), "/api/options/{type}"},
	{regexp.MustCompile(`^/swagger/.*$`), "/swagger/*"},
	{regexp.MustCompile(`^/admin/.+$`), "/admin/*"},
}

// RouteLabel maps a request path to a bounded metrics label.
func RouteLabel(path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for _, t := range routeTemplates {
		if t.pattern.MatchString(path) {
			return t.template
		}
	}
	return path
}

// MetricsMiddleware records request counts, latency and response sizes.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		route := RouteLabel(r.URL.Path)
		rec := record(w)
		start := time.Now()
		next.ServeHTTP(rec, r)

		status := strconv.Itoa(rec.status)
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		httpResponseSize.WithLabelValues(r.Method, route).Observe(float64(rec.bytes))
	})
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
