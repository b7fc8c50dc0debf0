package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/internal/types"
	"github.com/yeisme/mediacabinet/pkg/log"
)

// MoveFiles 批量移动文件.
//
//	@Summary		批量移动文件
//	@Description	把一批文件移动到目标文件夹
//	@Tags			文件
//	@Accept			json
//	@Produce		json
//	@Param			move	body		types.MoveFilesRequest	true	"移动请求"
//	@Success		200		{object}	types.MoveFilesResponse	"移动结果"
//	@Failure		400		{object}	map[string]string		"请求参数错误"
//	@Router			/api/v1/cabinet/files/move [post]
func MoveFiles(c *gin.Context) {
	l := log.Logger()

	var req types.MoveFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid move request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := cabinetService(c)

	resp, err := svc.MoveFiles(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	l.Info().Int("count", len(req.IDs)).Uint("folder", req.Folder).Int64("moved", resp.Moved).Msg("files moved")
	c.JSON(http.StatusOK, resp)
}
