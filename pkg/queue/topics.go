// Package queue 定义消息主题常量与通配模式，供发布/订阅使用.
package queue

// 主题命名规范：mc.<域>.<动作>，尽量稳定且向后兼容.
// 域：file(媒体文件)、folder(文件夹)
// 动作：stored/updated/deleted/moved/created

const (
	// 文件领域.
	TopicFileStored  = "mc.file.stored"  // 新文件入库（行与对象均已落盘）
	TopicFileUpdated = "mc.file.updated" // 文件内容或元数据更新（含覆盖保存）
	TopicFileDeleted = "mc.file.deleted" // 文件行删除，槽位对象一并清除
	TopicFileMoved   = "mc.file.moved"   // 文件移动到其它文件夹（含批量移动）

	// 文件夹领域.
	TopicFolderCreated = "mc.folder.created" // 文件夹创建
	TopicFolderDeleted = "mc.folder.deleted" // 文件夹（连同空的后代）删除
)

// 主题分组，用于批量订阅或权限控制.
var (
	// 文件相关主题集合.
	FileTopics = []string{
		TopicFileStored, TopicFileUpdated, TopicFileDeleted, TopicFileMoved,
	}

	// 文件夹相关主题集合.
	FolderTopics = []string{
		TopicFolderCreated, TopicFolderDeleted,
	}
)

// AllTopics 返回全部业务主题.
func AllTopics() []string {
	all := make([]string, 0, len(FileTopics)+len(FolderTopics))
	all = append(all, FileTopics...)

	return append(all, FolderTopics...)
}
