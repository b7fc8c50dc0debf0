// Package middleware 聚合 HTTP 中间件：认证、角色、限流、熔断、缓存与观测.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/scheduler"
)

type schedulerKey struct{}

// SchedulerMiddleware 把调度器注入请求上下文，供管理接口使用.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), schedulerKey{}, sched)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetScheduler 从请求上下文取出调度器，未注入时返回 nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	if sched, ok := c.Request.Context().Value(schedulerKey{}).(*scheduler.Scheduler); ok {
		return sched
	}

	return nil
}
