package handle

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/internal/types"
	"github.com/yeisme/mediacabinet/pkg/log"
)

// ListFiles 列出文件夹内容或全局搜索文件.
//
//	@Summary		列表与搜索
//	@Description	无搜索词时返回文件夹视图（folder 可为 ID 或 "last"），q 非空时全局搜索并忽略文件夹参数；携带 CKEditorFuncNum 时进入编辑器回调模式，行链接为预签名访问URL
//	@Tags			文件
//	@Produce		json
//	@Param			folder			query		string					false	"文件夹ID，或 last 表示上次浏览的文件夹"
//	@Param			q				query		string					false	"搜索词"
//	@Param			file_type		query		string					false	"文件类型过滤"
//	@Param			CKEditorFuncNum	query		string					false	"编辑器回调编号"
//	@Success		200				{object}	types.ListFilesResponse	"列表响应"
//	@Failure		500				{object}	map[string]string		"服务器内部错误"
//	@Router			/api/v1/cabinet/files [get]
func ListFiles(c *gin.Context) {
	l := log.Logger()

	var q types.ListFilesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		l.Warn().Err(err).Msg("invalid list query")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := cabinetService(c)

	resp, err := svc.ListFiles(c.Request.Context(), &q)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	decorateLinks(c, &q, resp)

	c.JSON(http.StatusOK, resp)
}

// decorateLinks 填充行链接.常规模式指向文件详情，编辑器回调模式给出
// 预签名访问地址并回显会话参数，以便编辑器直接引用.
func decorateLinks(c *gin.Context, q *types.ListFilesQuery, resp *types.ListFilesResponse) {
	browse := q.CKEditorFuncNum != ""
	svc := cabinetService(c)

	if browse {
		resp.CKEditorFuncNum = q.CKEditorFuncNum
		resp.CKEditor = q.CKEditor
		resp.LangCode = q.LangCode
	}

	for i := range resp.Files {
		item := &resp.Files[i]

		if !browse {
			item.Link = fmt.Sprintf("/api/v1/cabinet/files/%d", item.ID)
			continue
		}

		key := item.ImageFile
		if key == "" {
			key = item.DownloadFile
		}

		if key == "" {
			continue
		}

		url, err := svc.PresignKey(c.Request.Context(), key)
		if err != nil {
			log.Logger().Warn().Err(err).Uint("pk", item.ID).Msg("failed to presign browse link")
			continue
		}

		item.Link = url
	}
}
