package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishFileStored 发布 mc.file.stored 事件。
// 在文件行与对象双双落盘后调用，通知下游流程（缩略图、索引等）。
// 可通过可选项 opts 注入 TraceID、Producer 等头部信息。
func PublishFileStored(pub message.Publisher, payload FileStoredPayload, opts ...HeaderOption) error {
	msg, err := NewWatermillMessage(TopicFileStored, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileStored, msg)
}

// PublishFileUpdated 发布 mc.file.updated 事件。
func PublishFileUpdated(pub message.Publisher, payload FileUpdatedPayload, opts ...HeaderOption) error {
	msg, err := NewWatermillMessage(TopicFileUpdated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileUpdated, msg)
}

// PublishFileDeleted 发布 mc.file.deleted 事件。
func PublishFileDeleted(pub message.Publisher, payload FileDeletedPayload, opts ...HeaderOption) error {
	msg, err := NewWatermillMessage(TopicFileDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileDeleted, msg)
}

// PublishFileMoved 发布 mc.file.moved 事件。
func PublishFileMoved(pub message.Publisher, payload FileMovedPayload, opts ...HeaderOption) error {
	msg, err := NewWatermillMessage(TopicFileMoved, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileMoved, msg)
}

// PublishFolderCreated 发布 mc.folder.created 事件。
func PublishFolderCreated(pub message.Publisher, payload FolderCreatedPayload, opts ...HeaderOption) error {
	msg, err := NewWatermillMessage(TopicFolderCreated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFolderCreated, msg)
}

// PublishFolderDeleted 发布 mc.folder.deleted 事件。
func PublishFolderDeleted(pub message.Publisher, payload FolderDeletedPayload, opts ...HeaderOption) error {
	msg, err := NewWatermillMessage(TopicFolderDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFolderDeleted, msg)
}

// ParseFileStored 将 Watermill 消息解析为强类型 Envelope（FileStoredPayload）。
func ParseFileStored(msg *message.Message) (Message[FileStoredPayload], error) {
	return ParseWatermillMessage[FileStoredPayload](msg)
}
