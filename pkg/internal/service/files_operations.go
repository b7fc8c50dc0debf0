package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/types"
)

// MoveFiles 批量把文件重指到目标文件夹，单条 UPDATE 完成.
func (s *CabinetService) MoveFiles(ctx context.Context, req *types.MoveFilesRequest) (*types.MoveFilesResponse, error) {
	if _, err := s.GetFolder(ctx, req.Folder); err != nil {
		verr := model.NewValidationError()
		return nil, verr.Add("folder", "folder does not exist")
	}

	var moved int64

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.File{}).
			Where("id IN ?", req.IDs).
			Update("folder_id", req.Folder)
		if res.Error != nil {
			return res.Error
		}

		moved = res.RowsAffected

		return nil
	}); err != nil {
		return nil, fmt.Errorf("move files: %w", err)
	}

	s.invalidateListCache(ctx)
	s.publishFilesMoved(req.IDs, req.Folder)

	return &types.MoveFilesResponse{Moved: moved, Folder: req.Folder}, nil
}
