package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/types"
	"github.com/yeisme/mediacabinet/pkg/log"
)

// fileItemResponse 把文件行转为展示视图.
func fileItemResponse(f *model.File) types.FileItem {
	return types.FileItem{
		ID:            f.ID,
		FolderID:      f.FolderID,
		FileName:      f.FileName,
		FileSize:      f.FileSize,
		HumanFileSize: f.HumanFileSize(),
		Caption:       f.Caption,
		Copyright:     f.Copyright,
		ImageFile:     f.ImageFile,
		ImageWidth:    f.ImageWidth,
		ImageHeight:   f.ImageHeight,
		ImagePPOI:     f.ImagePPOI,
		ImageAltText:  f.ImageAltText,
		DownloadFile:  f.DownloadFile,
		DownloadType:  f.DownloadType,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// GetFile 获取单个文件的元数据.
//
//	@Summary		获取文件
//	@Description	获取单个文件的元数据与展示视图
//	@Tags			文件
//	@Produce		json
//	@Param			id	path		uint				true	"文件ID"
//	@Success		200	{object}	types.FileItem		"文件视图"
//	@Failure		404	{object}	map[string]string	"文件不存在"
//	@Router			/api/v1/cabinet/files/{id} [get]
func GetFile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc := cabinetService(c)

	file, err := svc.GetFile(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, fileItemResponse(file))
}

// UpdateFileMeta 更新文件元数据.
//
//	@Summary		更新文件元数据
//	@Description	更新说明、版权、关注点、替代文本或移动到其他文件夹，缺省字段不变
//	@Tags			文件
//	@Accept			json
//	@Produce		json
//	@Param			id		path		uint					true	"文件ID"
//	@Param			file	body		types.UpdateFileRequest	true	"更新请求"
//	@Success		200		{object}	types.FileItem			"更新后的文件"
//	@Failure		400		{object}	map[string]string		"请求参数错误"
//	@Failure		404		{object}	map[string]string		"文件不存在"
//	@Router			/api/v1/cabinet/files/{id} [patch]
func UpdateFileMeta(c *gin.Context) {
	l := log.Logger()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req types.UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid update request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := cabinetService(c)

	file, err := svc.UpdateFileMeta(c.Request.Context(), id, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, fileItemResponse(file))
}

// DeleteFile 删除文件及其存储对象.
//
//	@Summary		删除文件
//	@Description	删除文件行并清理对象存储中的所有槽位内容
//	@Tags			文件
//	@Produce		json
//	@Param			id	path		uint				true	"文件ID"
//	@Success		200	{object}	map[string]string	"删除成功"
//	@Failure		404	{object}	map[string]string	"文件不存在"
//	@Router			/api/v1/cabinet/files/{id} [delete]
func DeleteFile(c *gin.Context) {
	l := log.Logger()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc := cabinetService(c)

	if err := svc.DeleteFile(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}

	l.Info().Uint("pk", id).Msg("file deleted")
	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}

// DownloadFile 获取文件的预签名访问地址.
//
//	@Summary		获取文件访问URL
//	@Description	为文件当前槽位的对象生成预签名访问URL并重定向
//	@Tags			文件
//	@Produce		json
//	@Param			id	path		uint				true	"文件ID"
//	@Success		307	{string}	string				"重定向到预签名URL"
//	@Failure		404	{object}	map[string]string	"文件不存在"
//	@Router			/api/v1/cabinet/files/{id}/download [get]
func DownloadFile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc := cabinetService(c)

	file, err := svc.GetFile(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	url, err := svc.PresignFile(c.Request.Context(), file)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, url)
}
