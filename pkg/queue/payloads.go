package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// FileRef 标识一条文件行及其对象存储位置.
type FileRef struct {
	ID           uint   `json:"id"`
	FolderID     uint   `json:"folder_id"`
	ObjectKey    string `json:"object_key"`
	FileName     string `json:"file_name,omitempty"`
	Size         int64  `json:"size,omitempty"`
	Kind         string `json:"kind,omitempty"` // 占用的变体槽位名（image/download）
	DownloadType string `json:"download_type,omitempty"`
}

// FileStoredPayload 新文件入库.
type FileStoredPayload struct {
	File FileRef `json:"file"`
	// Source 触发来源，如 upload、api.
	Source string `json:"source,omitempty"`
}

// FileUpdatedPayload 文件更新；覆盖保存时 Overwrite 为 true，PrevKey 记录
// 非覆盖路径下被替换掉的旧对象键.
type FileUpdatedPayload struct {
	File      FileRef `json:"file"`
	Overwrite bool    `json:"overwrite,omitempty"`
	PrevKey   string  `json:"prev_key,omitempty"`
}

// FileDeletedPayload 文件删除，RemovedKeys 为随行删除的对象键.
type FileDeletedPayload struct {
	File        FileRef  `json:"file"`
	RemovedKeys []string `json:"removed_keys,omitempty"`
}

// FileMovedPayload 文件（批量）移动.
type FileMovedPayload struct {
	IDs        []uint `json:"ids"`
	FromFolder uint   `json:"from_folder,omitempty"` // 批量移动时可能混杂多个来源，0 表示未知
	ToFolder   uint   `json:"to_folder"`
}

// FolderRef 标识一个文件夹节点.
type FolderRef struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ParentID *uint  `json:"parent_id,omitempty"`
	Path     string `json:"path,omitempty"`
}

// FolderCreatedPayload 文件夹创建.
type FolderCreatedPayload struct {
	Folder FolderRef `json:"folder"`
}

// FolderDeletedPayload 文件夹删除，Deleted 为被移除的节点 ID（含空的后代）.
type FolderDeletedPayload struct {
	Folder  FolderRef `json:"folder"`
	Deleted []uint    `json:"deleted,omitempty"`
}
