package monitoring

import (
	"strconv"
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

	// ActiveSessions 各模块进行中的训练会话数
	ActiveSessions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trainer_active_sessions",
			Help: "Number of in-flight training sessions per module",
		},
		[]string{"module"},
	)

	// SessionsCompleted 按模块累计完成的会话数
	SessionsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainer_sessions_completed_total",
			Help: "Total number of completed training sessions",
		},
		[]string{"module"},
	)

	// SessionsAbandoned 主动放弃的会话数
	SessionsAbandoned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainer_sessions_abandoned_total",
			Help: "Total number of abandoned training sessions",
		},
		[]string{"module"},
	)

	// ModuleScores 模块完成分数分布
	ModuleScores = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trainer_module_score",
			Help:    "Distribution of module completion scores",
			Buckets: []float64{20, 40, 60, 70, 80, 90, 100},
		},
		[]string{"module"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(SessionsCompleted)
	prometheus.MustRegister(SessionsAbandoned)
	prometheus.MustRegister(ModuleScores)
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
