package types

import "time"

// CreateFolderRequest 创建文件夹请求.ParentID 缺省表示根文件夹.
type CreateFolderRequest struct {
	Name     string `binding:"required,max=100" json:"name"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateFolderRequest 重命名/移动文件夹（PUT，整体替换）.
type UpdateFolderRequest struct {
	Name     string `binding:"required,max=100" json:"name"`
	ParentID *uint  `json:"parent_id"`
}

// FolderResponse 文件夹的展示视图，计数由两次分组查询标注.
type FolderResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	ParentID    *uint     `json:"parent_id"`
	Path        string    `json:"path"` // "祖先 / … / 自身"
	FolderCount int64     `json:"folder_count"`
	FileCount   int64     `json:"file_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FolderChoice 文件夹下拉项：ID 与完整路径标签.
type FolderChoice struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

// DeleteFolderResponse 删除结果：被移除的文件夹 ID 列表（含空的后代）.
type DeleteFolderResponse struct {
	Deleted []uint `json:"deleted"`
}
