package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coverapp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coverapp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "coverapp",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being served.",
		},
	)

	coversGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coverapp",
			Name:      "covers_generated_total",
			Help:      "Covers rendered, by layout mode.",
		},
		[]string{"layout"},
	)

	fetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coverapp",
			Name:      "image_fetch_failures_total",
			Help:      "Backdrop and poster downloads that were skipped.",
		},
		[]string{"kind"},
	)

	uploads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coverapp",
			Name:      "uploads_total",
			Help:      "Images stored through the upload endpoint.",
		},
	)
)

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestTotal, requestsInFlight, coversGenerated, fetchFailures, uploads)
	})
}

// GinMiddleware records latency and counts for every request.
func GinMiddleware() gin.HandlerFunc {
	register()

	return func(c *gin.Context) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}

		requestDuration.With(labels).Observe(time.Since(start).Seconds())
		requestTotal.With(labels).Inc()
	}
}

// Handler exposes the default registry.
func Handler() http.Handler {
	register()
	return promhttp.Handler()
}

func CoverGenerated(layout string) { coversGenerated.WithLabelValues(layout).Inc() }
func FetchFailed(kind string)      { fetchFailures.WithLabelValues(kind).Inc() }
func Uploaded()                    { uploads.Inc() }
