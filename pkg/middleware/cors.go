package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/configs"
)

// CORSMiddleware 构建 CORS 中间件，调试模式下放开所有来源.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	// 编辑器弹窗跨域选图需要带文件响应
	config.AllowFiles = true
	config.AllowWebSockets = true

	if cfg.Debug {
		config.AllowAllOrigins = true
	}

	return cors.New(config)
}
