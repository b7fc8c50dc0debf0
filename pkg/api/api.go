// Package api 注册 HTTP 服务的路由组.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/internal/router"
)

// RegisterRoutes 注册媒体库的全部路由到传入的 gin 引擎.
// choicesHandlers 透传给文件夹下拉项路由，用于挂接响应缓存.
func RegisterRoutes(e *gin.Engine, choicesHandlers ...gin.HandlerFunc) *gin.Engine {
	v1 := e.Group("/api/v1")

	router.RegisterCabinetRoutes(v1, choicesHandlers...)
	router.RegisterHealthCheckRoute(v1)
	router.RegisterSchedulerRoutes(v1)

	router.RegisterSwaggerRoute(e)

	return e
}
