package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册数据库、对象存储与消息队列的健康检查路由.
func RegisterHealthCheckRoute(g *gin.RouterGroup) {
	health := g.Group("/health")
	{
		health.GET("/db", handle.HealthDB)
		health.GET("/s3", handle.HealthS3)
		health.GET("/mq", handle.HealthMQ)
	}
}
