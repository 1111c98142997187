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

	// 积分发放计数，result 为 granted / capped
	PointGrantCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "point_grants_total",
			Help: "Total point grant attempts by event kind and result",
		},
		[]string{"kind", "result"},
	)

	AchievementUnlockCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievement_unlocks_total",
			Help: "Total achievement unlocks by category",
		},
		[]string{"category"},
	)

	QuizOnlineUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_quiz_online_users",
			Help: "Current number of connected live quiz participants",
		},
	)

	// 实时赛事件计数，direction 为 in / out
	QuizEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_quiz_events_total",
			Help: "Total live quiz websocket events",
		},
		[]string{"event", "direction"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(PointGrantCounter)
	prometheus.MustRegister(AchievementUnlockCounter)
	prometheus.MustRegister(QuizOnlineUsers)
	prometheus.MustRegister(QuizEventCounter)
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
