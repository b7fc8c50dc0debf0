package model

import (
	"fmt"
	"path"
	"time"
)

// File 媒体文件行.元数据入库，字节存放在对象存储；每个变体槽位保存对象键，
// 行删除时槽位指向的对象一并删除（字节归行独占所有）.
type File struct {
	ID       uint `gorm:"primaryKey"     json:"id"`
	FolderID uint `gorm:"index;not null" json:"folder_id"`

	// 派生字段：保存时由填充槽位的对象键与字节数重新计算
	FileName string `gorm:"size:512;index" json:"file_name"`
	FileSize int64  `gorm:"index"          json:"file_size"`

	Caption   string `gorm:"size:1000" json:"caption"`
	Copyright string `gorm:"size:200"  json:"copyright"`

	// Overwrite 仅在单次保存内生效，保存结束后总是 false，不落库
	Overwrite bool `gorm:"-" json:"-"`

	// 图片槽位
	ImageFile    string `gorm:"size:1024;index" json:"image_file"`
	ImageWidth   *int   `json:"image_width"`
	ImageHeight  *int   `json:"image_height"`
	ImagePPOI    string `gorm:"size:20;default:0.5x0.5" json:"image_ppoi"`
	ImageAltText string `gorm:"size:1000"               json:"image_alt_text"`

	// 下载槽位
	DownloadFile string `gorm:"size:1024;index" json:"download_file"`
	DownloadType string `gorm:"size:20;index"   json:"download_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoredKeys 返回所有已填充槽位的对象键.
func (f *File) StoredKeys() []string {
	keys := make([]string, 0, 2)
	if f.ImageFile != "" {
		keys = append(keys, f.ImageFile)
	}

	if f.DownloadFile != "" {
		keys = append(keys, f.DownloadFile)
	}

	return keys
}

// ActiveKey 返回当前填充槽位的对象键，未填充时为空串.
func (f *File) ActiveKey() string {
	if f.ImageFile != "" {
		return f.ImageFile
	}

	return f.DownloadFile
}

// Label 展示名：优先 FileName，否则取对象键的 base.
func (f *File) Label() string {
	if f.FileName != "" {
		return f.FileName
	}

	if key := f.ActiveKey(); key != "" {
		return path.Base(key)
	}

	return fmt.Sprintf("file-%d", f.ID)
}

// HumanFileSize 人类可读的文件大小.
func (f *File) HumanFileSize() string {
	const unit = 1024

	size := f.FileSize
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
