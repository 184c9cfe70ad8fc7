package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// HTTPMetrics instruments the gin engine.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg *prometheus.Registry) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// MatrixMetrics counts repair engine activity.
type MatrixMetrics struct {
	RepairRuns         *prometheus.CounterVec
	PriceRowsGenerated prometheus.Counter
}

func NewMatrixMetrics(reg *prometheus.Registry) *MatrixMetrics {
	m := &MatrixMetrics{
		RepairRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matrix_repair_runs_total",
			Help: "Price table repairs by mode (regenerate, additive, skip).",
		}, []string{"mode"}),
		PriceRowsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matrix_price_rows_generated_total",
			Help: "Zero-price rows submitted to the store by repair and bootstrap runs.",
		}),
	}
	reg.MustRegister(m.RepairRuns, m.PriceRowsGenerated)
	return m
}

var Module = fx.Module("observability",
	fx.Provide(
		NewRegistry,
		NewHTTPMetrics,
		NewMatrixMetrics,
	),
)
