// Package model 定义媒体库的持久化模型：文件夹树与带变体槽位的文件.
package model

import (
	"time"
)

const (
	// MaxFolderNameLen 文件夹名称长度上限.
	MaxFolderNameLen = 100
)

// Folder 文件夹节点.ParentID 为 nil 表示根文件夹.
// 同一父级下名称唯一由联合索引保证；根级（parent_id IS NULL 时多数数据库
// 不参与唯一约束）的重名在校验层查询拦截.
type Folder struct {
	ID       uint   `gorm:"primaryKey"                                json:"id"`
	Name     string `gorm:"size:100;index:idx_parent_name,unique"     json:"name"`
	ParentID *uint  `gorm:"index:idx_parent_name,unique;index"        json:"parent_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRoot 是否根文件夹.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
