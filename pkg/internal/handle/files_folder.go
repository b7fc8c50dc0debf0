package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/service"
	"github.com/yeisme/mediacabinet/pkg/internal/types"
	"github.com/yeisme/mediacabinet/pkg/log"
)

// folderResponse 构造带路径与计数的文件夹视图.
func folderResponse(c *gin.Context, svc *service.CabinetService, folder *model.Folder) (types.FolderResponse, error) {
	annotated, err := svc.AnnotateCounts(c.Request.Context(), []model.Folder{*folder})
	if err != nil {
		return types.FolderResponse{}, err
	}

	return annotated[0], nil
}

// CreateFolder 创建文件夹.
//
//	@Summary		创建文件夹
//	@Description	创建文件夹，parent_id 缺省表示根层级；同级重名会被拒绝
//	@Tags			文件夹
//	@Accept			json
//	@Produce		json
//	@Param			folder	body		types.CreateFolderRequest	true	"创建请求"
//	@Success		201		{object}	types.FolderResponse		"新建的文件夹"
//	@Failure		400		{object}	map[string]string			"请求参数错误"
//	@Router			/api/v1/cabinet/folders [post]
func CreateFolder(c *gin.Context) {
	l := log.Logger()

	var req types.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create folder request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := cabinetService(c)

	folder, err := svc.CreateFolder(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp, err := folderResponse(c, svc, folder)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	l.Info().Uint("pk", folder.ID).Str("name", folder.Name).Msg("folder created")
	c.JSON(http.StatusCreated, resp)
}

// GetFolder 获取文件夹详情.
//
//	@Summary		获取文件夹
//	@Description	获取文件夹及其路径与子项计数
//	@Tags			文件夹
//	@Produce		json
//	@Param			id	path		uint					true	"文件夹ID"
//	@Success		200	{object}	types.FolderResponse	"文件夹视图"
//	@Failure		404	{object}	map[string]string		"文件夹不存在"
//	@Router			/api/v1/cabinet/folders/{id} [get]
func GetFolder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc := cabinetService(c)

	folder, err := svc.GetFolder(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp, err := folderResponse(c, svc, folder)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateFolder 重命名或移动文件夹.
//
//	@Summary		更新文件夹
//	@Description	重命名文件夹或移动到其他父级；移动到自身后代会被拒绝
//	@Tags			文件夹
//	@Accept			json
//	@Produce		json
//	@Param			id		path		uint						true	"文件夹ID"
//	@Param			folder	body		types.UpdateFolderRequest	true	"更新请求"
//	@Success		200		{object}	types.FolderResponse		"更新后的文件夹"
//	@Failure		400		{object}	map[string]string			"请求参数错误"
//	@Failure		404		{object}	map[string]string			"文件夹不存在"
//	@Router			/api/v1/cabinet/folders/{id} [put]
func UpdateFolder(c *gin.Context) {
	l := log.Logger()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req types.UpdateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid update folder request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := cabinetService(c)

	folder, err := svc.UpdateFolder(c.Request.Context(), id, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp, err := folderResponse(c, svc, folder)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteFolder 删除文件夹.
//
//	@Summary		删除文件夹
//	@Description	删除文件夹及其空的后代；子树内仍有文件时拒绝删除
//	@Tags			文件夹
//	@Produce		json
//	@Param			id	path		uint						true	"文件夹ID"
//	@Success		200	{object}	types.DeleteFolderResponse	"被删除的文件夹ID列表"
//	@Failure		404	{object}	map[string]string			"文件夹不存在"
//	@Failure		409	{object}	map[string]string			"子树内仍有文件"
//	@Router			/api/v1/cabinet/folders/{id} [delete]
func DeleteFolder(c *gin.Context) {
	l := log.Logger()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc := cabinetService(c)

	deleted, err := svc.DeleteFolder(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	l.Info().Uint("pk", id).Int("count", len(deleted)).Msg("folder deleted")
	c.JSON(http.StatusOK, types.DeleteFolderResponse{Deleted: deleted})
}

// FolderChoices 文件夹下拉项.
//
//	@Summary		文件夹选择列表
//	@Description	返回全部文件夹的 ID 与完整路径标签，按树序排列
//	@Tags			文件夹
//	@Produce		json
//	@Success		200	{array}	types.FolderChoice	"下拉项列表"
//	@Router			/api/v1/cabinet/folders/choices [get]
func FolderChoices(c *gin.Context) {
	svc := cabinetService(c)

	choices, err := svc.FolderChoices(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, choices)
}
