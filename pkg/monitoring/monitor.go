package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// AttemptCounter counts evaluation submissions by outcome: passed, failed, rejected.
	AttemptCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluation_attempts_total",
			Help: "Total number of evaluation attempt submissions",
		},
		[]string{"type", "outcome"},
	)

	AttemptScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evaluation_attempt_score",
			Help:    "Score of recorded evaluation attempts",
			Buckets: []float64{20, 40, 60, 80, 90, 100},
		},
		[]string{"type"},
	)

	ProgressBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "progress_batch_courses",
			Help:    "Number of courses per progress computation",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
	)

	ProgressCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_cache_lookups_total",
			Help: "Progress cache lookups by result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(AttemptCounter)
		prometheus.MustRegister(AttemptScore)
		prometheus.MustRegister(ProgressBatchSize)
		prometheus.MustRegister(ProgressCacheLookups)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
