// Package types 定义 HTTP 层的请求与响应结构.
package types

import "time"

// UploadFileRequest 上传请求的表单部分，文件本体取自 multipart 的 file 字段.
type UploadFileRequest struct {
	Folder    uint   `form:"folder"    binding:"required"` // 目标文件夹 ID
	Overwrite bool   `form:"overwrite"`                    // 可选：覆盖保存（仅替换内容时有意义）
	Caption   string `form:"caption"`                      // 可选：说明
	Copyright string `form:"copyright"`                    // 可选：版权
}

// UploadFileResponse 上传响应.
type UploadFileResponse struct {
	Success bool   `json:"success"`
	PK      uint   `json:"pk,omitempty"`
	Name    string `json:"name,omitempty"`
	Folder  uint   `json:"folder,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ReplaceFileRequest 替换文件内容的表单部分.
type ReplaceFileRequest struct {
	Overwrite bool `form:"overwrite"` // true 时在旧对象键下原地覆盖
}

// UpdateFileRequest 更新文件元数据（PATCH，指针字段缺省表示不修改）.
type UpdateFileRequest struct {
	FolderID     *uint   `json:"folder_id"`
	Caption      *string `json:"caption"`
	Copyright    *string `json:"copyright"`
	ImagePPOI    *string `json:"image_ppoi"`
	ImageAltText *string `json:"image_alt_text"`
}

// FileItem 文件的展示视图.
type FileItem struct {
	ID            uint      `json:"id"`
	FolderID      uint      `json:"folder_id"`
	FileName      string    `json:"file_name"`
	FileSize      int64     `json:"file_size"`
	HumanFileSize string    `json:"human_file_size"`
	Caption       string    `json:"caption,omitempty"`
	Copyright     string    `json:"copyright,omitempty"`
	ImageFile     string    `json:"image_file,omitempty"`
	ImageWidth    *int      `json:"image_width,omitempty"`
	ImageHeight   *int      `json:"image_height,omitempty"`
	ImagePPOI     string    `json:"image_ppoi,omitempty"`
	ImageAltText  string    `json:"image_alt_text,omitempty"`
	DownloadFile  string    `json:"download_file,omitempty"`
	DownloadType  string    `json:"download_type,omitempty"`
	Path          string    `json:"path,omitempty"` // 祖先路径标签，全局搜索时填写
	Link          string    `json:"link,omitempty"` // 行链接：常规为变更地址，编辑器回调模式为回调链接
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MoveFilesRequest 批量移动请求.
type MoveFilesRequest struct {
	IDs    []uint `binding:"required,min=1" json:"ids"`
	Folder uint   `binding:"required"       json:"folder"`
}

// MoveFilesResponse 批量移动结果.
type MoveFilesResponse struct {
	Moved  int64 `json:"moved"`
	Folder uint  `json:"folder"`
}
