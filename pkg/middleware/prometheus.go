package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/metrics"
)

// PrometheusMiddleware 记录请求计数与耗时.
// 标签用路由模板，未匹配到路由的请求归入 unmatched.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		method := c.Request.Method

		metrics.RequestCounter.WithLabelValues(method, route).Inc()
		metrics.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
