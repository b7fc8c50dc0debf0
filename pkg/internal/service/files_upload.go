package service

import (
	"context"
	"fmt"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/types"
	"github.com/yeisme/mediacabinet/pkg/internal/variant"
	"github.com/yeisme/mediacabinet/pkg/rule"
)

// UploadFile 上传入口：校验目标文件夹、分发变体、走保存协议，成功返回
// 新行的标识与展示名.
func (s *CabinetService) UploadFile(ctx context.Context, req *types.UploadFileRequest, pending *variant.Pending) (*model.File, error) {
	if pending == nil || len(pending.Data) == 0 {
		verr := model.NewValidationError()
		return nil, verr.Add("file", "no file given")
	}

	if max := s.lib.MaxUploadBytes(); max > 0 && pending.Size() > max {
		verr := model.NewValidationError()
		return nil, verr.Add("file", fmt.Sprintf("file exceeds upload limit of %d bytes", max))
	}

	if _, err := s.GetFolder(ctx, req.Folder); err != nil {
		verr := model.NewValidationError()
		return nil, verr.Add("folder", "folder does not exist")
	}

	file := &model.File{
		FolderID:  req.Folder,
		Caption:   req.Caption,
		Copyright: req.Copyright,
	}

	if _, err := s.manifest.Dispatch(file, pending); err != nil {
		return nil, err
	}

	if err := s.SaveFile(ctx, file, pending); err != nil {
		return nil, err
	}

	s.rememberLastFolder(ctx, req.Folder)

	return file, nil
}

// ReplaceContent 替换既有文件的内容.overwrite 为真时在旧对象键下原地
// 覆盖，否则换新键并在行保存后清理旧对象.
func (s *CabinetService) ReplaceContent(ctx context.Context, id uint, overwrite bool, pending *variant.Pending) (*model.File, error) {
	if pending == nil || len(pending.Data) == 0 {
		verr := model.NewValidationError()
		return nil, verr.Add("file", "no file given")
	}

	file, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}

	file.Overwrite = overwrite && s.lib.AllowOverwrite

	if _, err := s.manifest.Dispatch(file, pending); err != nil {
		return nil, err
	}

	if err := s.SaveFile(ctx, file, pending); err != nil {
		return nil, err
	}

	return file, nil
}

// UpdateFileMeta 更新行级元数据，不触碰对象存储内容.
func (s *CabinetService) UpdateFileMeta(ctx context.Context, id uint, req *types.UpdateFileRequest) (*model.File, error) {
	file, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FolderID != nil {
		if _, err := s.GetFolder(ctx, *req.FolderID); err != nil {
			verr := model.NewValidationError()
			return nil, verr.Add("folder_id", "folder does not exist")
		}

		file.FolderID = *req.FolderID
	}

	if req.Caption != nil {
		file.Caption = *req.Caption
	}

	if req.Copyright != nil {
		file.Copyright = *req.Copyright
	}

	if req.ImagePPOI != nil {
		if err := rule.ValidateVar(*req.ImagePPOI, "ppoi"); err != nil {
			verr := model.NewValidationError()
			return nil, verr.Add("image_ppoi", "must look like 0.5x0.5 with both values in [0,1]")
		}

		file.ImagePPOI = *req.ImagePPOI
	}

	if req.ImageAltText != nil {
		file.ImageAltText = *req.ImageAltText
	}

	if err := s.SaveFile(ctx, file, nil); err != nil {
		return nil, err
	}

	return file, nil
}
