package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/mediacabinet/pkg/context"
)

const healthTimeout = 2 * time.Second

func unhealthy(c *gin.Context, component, msg string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"component": component,
		"status":    "unhealthy",
		"error":     msg,
	})
}

func healthy(c *gin.Context, component string) {
	c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
}

// HealthDB 数据库健康检查，对连接池做一次带超时的 ping.
func HealthDB(c *gin.Context) {
	dbc := ctxPkg.GetDBClient(c.Request.Context())
	if dbc == nil || dbc.DB == nil {
		unhealthy(c, "db", "db client not initialized")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	sqlDB, err := dbc.DB.DB()
	if err != nil {
		unhealthy(c, "db", err.Error())
		return
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		unhealthy(c, "db", err.Error())
		return
	}

	healthy(c, "db")
}

// HealthS3 对象存储健康检查，列桶成功即视为可用.
func HealthS3(c *gin.Context) {
	s3c := ctxPkg.GetS3Client(c.Request.Context())
	if s3c == nil || s3c.Client == nil {
		unhealthy(c, "s3", "s3 client not initialized")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if _, err := s3c.ListBuckets(ctx); err != nil {
		unhealthy(c, "s3", err.Error())
		return
	}

	healthy(c, "s3")
}

// HealthMQ 消息队列健康检查.
// publisher 与 subscriber 在初始化时已建连，客户端存在即视为可用.
func HealthMQ(c *gin.Context) {
	if ctxPkg.GetMQClient(c.Request.Context()) == nil {
		unhealthy(c, "mq", "mq client not initialized")
		return
	}

	healthy(c, "mq")
}
