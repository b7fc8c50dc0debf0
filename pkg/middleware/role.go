package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Role 表示请求方角色，数值越大权限越高.
type Role int

const (
	RoleViewer Role = iota + 1
	RoleEditor
	RoleAdmin
)

// String 返回角色的字符串表示.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleEditor:
		return "editor"
	default:
		return "viewer"
	}
}

type roleKey struct{}

// parseRole 解析角色字符串，未知值降级为 viewer.
func parseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "editor":
		return RoleEditor
	default:
		return RoleViewer
	}
}

// RoleMiddleware 从 X-Role 请求头解析角色并注入 gin.Context 与 request.Context.
func RoleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		r := parseRole(c.GetHeader("X-Role"))
		c.Set("role", r)

		ctx := context.WithValue(c.Request.Context(), roleKey{}, r)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRole 返回当前请求角色，未注入时视为 viewer.
func GetRole(c *gin.Context) Role {
	if v, ok := c.Get("role"); ok {
		if r, ok2 := v.(Role); ok2 {
			return r
		}
	}

	if v := c.Request.Context().Value(roleKey{}); v != nil {
		if r, ok := v.(Role); ok {
			return r
		}
	}

	return RoleViewer
}

// RequireMinRole 校验最小角色，不满足时返回 403.
func RequireMinRole(minRole Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) < minRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		c.Next()
	}
}
