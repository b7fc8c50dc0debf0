package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/yeisme/mediacabinet/pkg/configs"
)

// errServerError 标记一次 5xx 响应，只用于驱动熔断器的失败计数.
var errServerError = errors.New("upstream handler returned 5xx")

// CircuitBreakerMiddleware 基于 gobreaker 的请求级熔断.
// 5xx 计入失败；熔断打开期间直接返回 503，不再进入处理链.
func CircuitBreakerMiddleware(cfg configs.CircuitBreakerConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "http",
		MaxRequests: cfg.MaxRequestsInHalf,
		Interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}

			rate := float64(counts.TotalFailures) / float64(counts.Requests)

			return rate >= cfg.FailureRate
		},
	})

	return func(c *gin.Context) {
		_, err := cb.Execute(func() (any, error) {
			c.Next()

			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, errServerError
			}

			return nil, nil
		})

		// 只有请求被熔断器拒绝时处理链才没跑过，此时响应尚未写出
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "service temporarily unavailable"})
		}
	}
}
