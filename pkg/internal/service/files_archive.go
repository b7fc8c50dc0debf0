package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
)

// ArchiveFolder 把文件夹子树导出为 zip 写入 w.目录布局按数据库树形
// 结构而非对象键，顶层目录为被导出文件夹的名字；同目录下文件名冲突时
// 给后写入的追加随机后缀去重.
func (s *CabinetService) ArchiveFolder(ctx context.Context, folderID uint, w io.Writer) error {
	root, err := s.GetFolder(ctx, folderID)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	seen := make(map[string]struct{})

	if err := s.archiveWalk(ctx, zw, root, "", seen); err != nil {
		_ = zw.Close()
		return err
	}

	return zw.Close()
}

// archiveWalk 深度优先：先写当前文件夹的直属文件，再按名称序递归子文件夹.
func (s *CabinetService) archiveWalk(ctx context.Context, zw *zip.Writer, folder *model.Folder, parent string, seen map[string]struct{}) error {
	dir := path.Join(parent, folder.Name)

	var files []model.File
	if err := s.db.WithContext(ctx).
		Where("folder_id = ?", folder.ID).
		Order("file_name").
		Find(&files).Error; err != nil {
		return fmt.Errorf("list files of folder %d: %w", folder.ID, err)
	}

	for i := range files {
		if err := s.archiveFile(ctx, zw, &files[i], dir, seen); err != nil {
			return err
		}
	}

	var children []model.Folder
	if err := s.db.WithContext(ctx).
		Where("parent_id = ?", folder.ID).
		Order("name").
		Find(&children).Error; err != nil {
		return fmt.Errorf("list subfolders of folder %d: %w", folder.ID, err)
	}

	for i := range children {
		if err := s.archiveWalk(ctx, zw, &children[i], dir, seen); err != nil {
			return err
		}
	}

	return nil
}

// archiveFile 把单个文件的对象内容写进 zip 条目.
func (s *CabinetService) archiveFile(ctx context.Context, zw *zip.Writer, f *model.File, dir string, seen map[string]struct{}) error {
	key := f.ActiveKey()
	if key == "" {
		return fmt.Errorf("file %d has no stored content", f.ID)
	}

	arcPath := path.Join(dir, f.FileName)
	if _, dup := seen[arcPath]; dup {
		ext := path.Ext(f.FileName)
		stem := strings.TrimSuffix(f.FileName, ext)
		arcPath = path.Join(dir, stem+"_"+archiveSuffix()+ext)
	}

	seen[arcPath] = struct{}{}

	obj, err := s.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read object %s: %w", key, err)
	}
	defer obj.Close()

	entry, err := zw.Create(arcPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(entry, obj); err != nil {
		return fmt.Errorf("write archive entry %s: %w", arcPath, err)
	}

	return nil
}

// archiveSuffix 去重用的短随机后缀.
func archiveSuffix() string {
	id := strings.ToLower(ulid.Make().String())
	return id[len(id)-4:]
}
