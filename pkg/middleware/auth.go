package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/configs"
	ctxPkg "github.com/yeisme/mediacabinet/pkg/context"
)

// identityHeaders 反向代理（如 oauth2-proxy）注入的身份请求头，按优先级排列.
var identityHeaders = []string{"X-Auth-Request-Email", "X-Forwarded-Email"}

// AuthMiddleware 校验反向代理注入的身份请求头.
// 命中 skip_paths 前缀的路径直接放行；开发模式下允许 ?user= 兜底.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || skippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		email := requestIdentity(c)
		if email == "" && conf.DevAllowQuery {
			email = strings.TrimSpace(c.Query("user"))
		}

		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		// 下游记审计日志时可从这里取操作者
		c.Set("user_email", email)
		// 服务层（如按人记忆的 last folder）从 request context 取身份
		c.Request = c.Request.WithContext(ctxPkg.WithUser(c.Request.Context(), email))
		c.Next()
	}
}

func requestIdentity(c *gin.Context) string {
	for _, h := range identityHeaders {
		if v := strings.TrimSpace(c.GetHeader(h)); v != "" {
			return v
		}
	}

	return ""
}

func skippedPath(path string, skips []string) bool {
	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
