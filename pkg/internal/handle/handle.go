// Package handle 提供请求处理器的实现，用于处理媒体库的 HTTP 请求.
package handle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/service"
	"github.com/yeisme/mediacabinet/pkg/internal/variant"
	"github.com/yeisme/mediacabinet/pkg/log"
)

// manifest 进程级的变体清单，由应用启动时通过 Init 注入.
// 清单在登记时即完成校验，请求路径上不再出现配置错误.
var manifest *variant.Manifest

// Init 注入启动时校验过的变体清单.
func Init(m *variant.Manifest) {
	manifest = m
}

// cabinetService 按请求构造媒体库服务，存储客户端取自请求上下文.
func cabinetService(c *gin.Context) *service.CabinetService {
	return service.NewCabinetService(c.Request.Context(), manifest)
}

// parseIDParam 解析路径中的数字 ID.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}

	return uint(id), true
}

// writeServiceError 把服务层错误映射为 HTTP 响应.
func writeServiceError(c *gin.Context, err error) {
	l := log.Logger()

	var verr *model.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
		return
	}

	var nerr *variant.NoAcceptingVariantError
	if errors.As(err, &nerr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ferr *service.FolderNotEmptyError
	if errors.As(err, &ferr) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "files": ferr.Files})
		return
	}

	switch {
	case errors.Is(err, service.ErrFileNotFound), errors.Is(err, service.ErrFolderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		l.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
