package handle

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/internal/types"
	"github.com/yeisme/mediacabinet/pkg/internal/variant"
	"github.com/yeisme/mediacabinet/pkg/log"
	"github.com/yeisme/mediacabinet/pkg/metrics"
)

// readPending 把 multipart 文件读入待提交内容.
func readPending(fh *multipart.FileHeader) (*variant.Pending, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	return &variant.Pending{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// UploadFile 处理文件上传请求.
//
//	@Summary		上传文件
//	@Description	上传文件到指定文件夹，按变体清单分发到图片或下载槽位
//	@Tags			文件
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file						true	"上传的文件"
//	@Param			folder		formData	uint						true	"目标文件夹ID"
//	@Param			caption		formData	string						false	"说明"
//	@Param			copyright	formData	string						false	"版权"
//	@Success		200			{object}	types.UploadFileResponse	"上传结果"
//	@Failure		400			{object}	map[string]string			"请求参数错误"
//	@Failure		500			{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/cabinet/files [post]
func UploadFile(c *gin.Context) {
	l := log.Logger()

	var req types.UploadFileRequest
	if err := c.ShouldBind(&req); err != nil {
		l.Warn().Err(err).Msg("invalid upload request")
		c.JSON(http.StatusBadRequest, types.UploadFileResponse{Error: err.Error()})

		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		l.Warn().Err(err).Msg("no file provided")
		c.JSON(http.StatusBadRequest, types.UploadFileResponse{Error: "no file provided"})

		return
	}

	pending, err := readPending(fh)
	if err != nil {
		l.Error().Err(err).Str("file_name", fh.Filename).Msg("failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, types.UploadFileResponse{Error: "failed to process file"})

		return
	}

	svc := cabinetService(c)

	file, err := svc.UploadFile(c.Request.Context(), &req, pending)
	if err != nil {
		l.Warn().Err(err).Str("file_name", fh.Filename).Msg("upload rejected")
		writeServiceError(c, err)

		return
	}

	kind := "download"
	if file.ImageFile != "" {
		kind = "image"
	}

	metrics.UploadBytes.WithLabelValues(kind).Add(float64(len(pending.Data)))

	l.Info().
		Uint("pk", file.ID).
		Str("file_name", file.FileName).
		Uint("folder", file.FolderID).
		Msg("file uploaded")

	c.JSON(http.StatusOK, types.UploadFileResponse{
		Success: true,
		PK:      file.ID,
		Name:    file.Label(),
		Folder:  file.FolderID,
	})
}

// ReplaceFile 替换既有文件的内容.
//
//	@Summary		替换文件内容
//	@Description	为既有文件上传新内容，overwrite 为真时在旧对象键下原地覆盖
//	@Tags			文件
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id			path		uint				true	"文件ID"
//	@Param			file		formData	file				true	"新内容"
//	@Param			overwrite	formData	bool				false	"原地覆盖"
//	@Success		200			{object}	types.FileItem		"替换后的文件"
//	@Failure		400			{object}	map[string]string	"请求参数错误"
//	@Failure		404			{object}	map[string]string	"文件不存在"
//	@Router			/api/v1/cabinet/files/{id} [put]
func ReplaceFile(c *gin.Context) {
	l := log.Logger()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req types.ReplaceFileRequest
	if err := c.ShouldBind(&req); err != nil {
		l.Warn().Err(err).Msg("invalid replace request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		l.Warn().Err(err).Msg("no file provided")
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})

		return
	}

	pending, err := readPending(fh)
	if err != nil {
		l.Error().Err(err).Str("file_name", fh.Filename).Msg("failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process file"})

		return
	}

	svc := cabinetService(c)

	file, err := svc.ReplaceContent(c.Request.Context(), id, req.Overwrite, pending)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	l.Info().Uint("pk", file.ID).Str("file_name", file.FileName).Bool("overwrite", req.Overwrite).Msg("file content replaced")
	c.JSON(http.StatusOK, fileItemResponse(file))
}
