package service

import (
	"context"

	"github.com/yeisme/mediacabinet/pkg/configs"
	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/variant"
	nlog "github.com/yeisme/mediacabinet/pkg/log"
	"github.com/yeisme/mediacabinet/pkg/queue"
)

// fileRef 构造事件用的文件引用.
func fileRef(f *model.File, kind string) queue.FileRef {
	return queue.FileRef{
		ID:           f.ID,
		FolderID:     f.FolderID,
		ObjectKey:    f.ActiveKey(),
		FileName:     f.FileName,
		Size:         f.FileSize,
		Kind:         kind,
		DownloadType: f.DownloadType,
	}
}

// publishFileSaved 保存成功后发布 stored/updated 事件.MQ 不可用或开关
// 关闭时静默跳过，事件永不阻塞保存路径.
func (s *CabinetService) publishFileSaved(f *model.File, pending *variant.Pending, original *model.File, overwrite bool) {
	pub := s.mqClient.Publisher()
	if pub == nil {
		return
	}

	ev := configs.GetConfig().Events
	if !ev.Enabled {
		return
	}

	kind := ""
	if pending != nil {
		kind = pending.Kind
	}

	if original == nil {
		if !ev.File.Stored {
			return
		}

		err := queue.PublishFileStored(pub, queue.FileStoredPayload{
			File:   fileRef(f, kind),
			Source: "upload",
		}, queue.WithProducer(configs.AppName))
		if err != nil {
			nlog.Logger().Warn().Err(err).Msg("publish file stored event failed")
		}

		return
	}

	if !ev.File.Updated {
		return
	}

	prevKey := ""
	if !overwrite && original.ActiveKey() != f.ActiveKey() {
		prevKey = original.ActiveKey()
	}

	err := queue.PublishFileUpdated(pub, queue.FileUpdatedPayload{
		File:      fileRef(f, kind),
		Overwrite: overwrite,
		PrevKey:   prevKey,
	}, queue.WithProducer(configs.AppName))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish file updated event failed")
	}
}

// publishFileDeleted 删除成功后发布事件.
func (s *CabinetService) publishFileDeleted(f *model.File, removed []string) {
	pub := s.mqClient.Publisher()
	if pub == nil {
		return
	}

	ev := configs.GetConfig().Events
	if !ev.Enabled || !ev.File.Deleted {
		return
	}

	err := queue.PublishFileDeleted(pub, queue.FileDeletedPayload{
		File:        fileRef(f, ""),
		RemovedKeys: removed,
	}, queue.WithProducer(configs.AppName))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish file deleted event failed")
	}
}

// publishFilesMoved 批量移动成功后发布事件.
func (s *CabinetService) publishFilesMoved(ids []uint, to uint) {
	pub := s.mqClient.Publisher()
	if pub == nil {
		return
	}

	ev := configs.GetConfig().Events
	if !ev.Enabled || !ev.File.Moved {
		return
	}

	err := queue.PublishFileMoved(pub, queue.FileMovedPayload{
		IDs:      ids,
		ToFolder: to,
	}, queue.WithProducer(configs.AppName))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish files moved event failed")
	}
}

// publishFolderCreated 文件夹创建事件.
func (s *CabinetService) publishFolderCreated(ctx context.Context, folder *model.Folder) {
	pub := s.mqClient.Publisher()
	if pub == nil {
		return
	}

	ev := configs.GetConfig().Events
	if !ev.Enabled || !ev.Folder.Created {
		return
	}

	path, err := s.FolderPath(ctx, folder)
	if err != nil {
		path = folder.Name
	}

	err = queue.PublishFolderCreated(pub, queue.FolderCreatedPayload{
		Folder: queue.FolderRef{ID: folder.ID, Name: folder.Name, ParentID: folder.ParentID, Path: path},
	}, queue.WithProducer(configs.AppName))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish folder created event failed")
	}
}

// publishFolderDeleted 文件夹删除事件.
func (s *CabinetService) publishFolderDeleted(folder *model.Folder, deleted []uint) {
	pub := s.mqClient.Publisher()
	if pub == nil {
		return
	}

	ev := configs.GetConfig().Events
	if !ev.Enabled || !ev.Folder.Deleted {
		return
	}

	err := queue.PublishFolderDeleted(pub, queue.FolderDeletedPayload{
		Folder:  queue.FolderRef{ID: folder.ID, Name: folder.Name, ParentID: folder.ParentID},
		Deleted: deleted,
	}, queue.WithProducer(configs.AppName))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish folder deleted event failed")
	}
}
