package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetricsOptions configures the HTTP metrics middleware.
type HTTPMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Subsystem  string
	Buckets    []float64
}

// HTTPMetrics exposes Prometheus collectors for request instrumentation.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics constructs collectors for HTTP request metrics and registers
// them with the provided registerer.
func NewHTTPMetrics(opts HTTPMetricsOptions) (*HTTPMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "accounts"
	}
	subsystem := opts.Subsystem
	if subsystem == "" {
		subsystem = "http"
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "Total number of HTTP requests partitioned by method, route, and status code.",
	}, []string{"method", "route", "status"})
	if err := register(reg, requests, func(existing prometheus.Collector) bool {
		if c, ok := existing.(*prometheus.CounterVec); ok {
			requests = c
			return true
		}
		return false
	}); err != nil {
		return nil, err
	}

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency distribution.",
		Buckets:   buckets,
	}, []string{"method", "route"})
	if err := register(reg, duration, func(existing prometheus.Collector) bool {
		if h, ok := existing.(*prometheus.HistogramVec); ok {
			duration = h
			return true
		}
		return false
	}); err != nil {
		return nil, err
	}

	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "in_flight_requests",
		Help:      "Number of HTTP requests currently being served.",
	})
	if err := register(reg, inFlight, func(existing prometheus.Collector) bool {
		if g, ok := existing.(prometheus.Gauge); ok {
			inFlight = g
			return true
		}
		return false
	}); err != nil {
		return nil, err
	}

	return &HTTPMetrics{Requests: requests, Duration: duration, InFlight: inFlight}, nil
}

func register(reg prometheus.Registerer, collector prometheus.Collector, adopt func(prometheus.Collector) bool) error {
	err := reg.Register(collector)
	if err == nil {
		return nil
	}
	if already, ok := err.(prometheus.AlreadyRegisteredError); ok && adopt(already.ExistingCollector) {
		return nil
	}
	return err
}

// Middleware records request counts, latencies and in-flight gauge values.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.InFlight.Inc()
		start := time.Now()

		c.Next()

		m.InFlight.Dec()
		m.Duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
