package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/mediacabinet/pkg/configs"
)

// limiterEntry 记录单个 key 的限流器及最近一次使用时间，供后台回收.
type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware 按配置构建限流中间件.
// key 维度支持 global、ip 或 header:<name>，未配置时按全局处理.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Key))
	if mode == "" || mode == "global" {
		global := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !global.Allow() {
				tooManyRequests(c)
				return
			}

			c.Next()
		}
	}

	var (
		mu      sync.Mutex
		entries = map[string]*limiterEntry{}
	)

	acquire := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		if e, ok := entries[key]; ok {
			e.lastSeen = time.Now()
			return e.lim
		}

		e := &limiterEntry{
			lim:      rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
			lastSeen: time.Now(),
		}
		entries[key] = e

		return e.lim
	}

	// 定期清掉长时间未出现的 key，上传客户端的 IP 池可能很大
	go func() {
		const (
			sweepInterval = 10 * time.Minute
			idleTimeout   = 30 * time.Minute
		)

		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for range ticker.C {
			cutoff := time.Now().Add(-idleTimeout)

			mu.Lock()
			for k, e := range entries {
				if e.lastSeen.Before(cutoff) {
					delete(entries, k)
				}
			}
			mu.Unlock()
		}
	}()

	headerName := ""
	if strings.HasPrefix(mode, "header:") {
		headerName = strings.TrimPrefix(mode, "header:")
	}

	return func(c *gin.Context) {
		key := ""
		if headerName != "" {
			key = c.GetHeader(headerName)
		}

		if key == "" {
			key = requestIP(c)
		}

		if key == "" {
			key = "unknown"
		}

		if !acquire(key).Allow() {
			tooManyRequests(c)
			return
		}

		c.Next()
	}
}

func tooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests,
		gin.H{"error": "rate limit exceeded, please retry later"})
}

func requestIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return host
}
