package service_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/service"
	"github.com/yeisme/mediacabinet/pkg/internal/types"
)

// TestCreateFolderValidation 名称与重名校验.
func TestCreateFolderValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreateFolder(t, svc, "Media", nil)

	var verr *model.ValidationError

	// 根级重名：数据库唯一索引不覆盖 NULL 父级，必须由查询拦截
	_, err := svc.CreateFolder(ctx, &types.CreateFolderRequest{Name: "Media"})
	if !errors.As(err, &verr) {
		t.Fatalf("duplicate root: want ValidationError, got %v", err)
	}

	// 空名称
	_, err = svc.CreateFolder(ctx, &types.CreateFolderRequest{Name: "   "})
	if !errors.As(err, &verr) {
		t.Fatalf("blank name: want ValidationError, got %v", err)
	}

	// 不存在的父级
	missing := uint(9999)

	_, err = svc.CreateFolder(ctx, &types.CreateFolderRequest{Name: "Sub", ParentID: &missing})
	if !errors.As(err, &verr) {
		t.Fatalf("missing parent: want ValidationError, got %v", err)
	}
}

// TestCreateFolderSiblingDuplicate 同级重名拒绝，不同级放行.
func TestCreateFolderSiblingDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	parent := mustCreateFolder(t, svc, "Media", nil)
	mustCreateFolder(t, svc, "Images", &parent.ID)

	var verr *model.ValidationError

	_, err := svc.CreateFolder(ctx, &types.CreateFolderRequest{Name: "Images", ParentID: &parent.ID})
	if !errors.As(err, &verr) {
		t.Fatalf("duplicate sibling: want ValidationError, got %v", err)
	}

	// 不同父级下可以同名
	other := mustCreateFolder(t, svc, "Backup", nil)
	if _, err := svc.CreateFolder(ctx, &types.CreateFolderRequest{Name: "Images", ParentID: &other.ID}); err != nil {
		t.Fatalf("same name under other parent: %v", err)
	}
}

// TestUpdateFolderCycle 不能把文件夹移到自身或其后代之下.
func TestUpdateFolderCycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreateFolder(t, svc, "A", nil)
	b := mustCreateFolder(t, svc, "B", &a.ID)
	c := mustCreateFolder(t, svc, "C", &b.ID)

	var verr *model.ValidationError

	_, err := svc.UpdateFolder(ctx, a.ID, &types.UpdateFolderRequest{Name: "A", ParentID: &a.ID})
	if !errors.As(err, &verr) {
		t.Fatalf("self parent: want ValidationError, got %v", err)
	}

	_, err = svc.UpdateFolder(ctx, a.ID, &types.UpdateFolderRequest{Name: "A", ParentID: &c.ID})
	if !errors.As(err, &verr) {
		t.Fatalf("move below descendant: want ValidationError, got %v", err)
	}

	// 合法移动
	if _, err := svc.UpdateFolder(ctx, c.ID, &types.UpdateFolderRequest{Name: "C", ParentID: &a.ID}); err != nil {
		t.Fatalf("legal move: %v", err)
	}
}

// TestFolderPath 路径为根到自身的名称链.
func TestFolderPath(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreateFolder(t, svc, "Media", nil)
	b := mustCreateFolder(t, svc, "2026", &a.ID)
	c := mustCreateFolder(t, svc, "August", &b.ID)

	path, err := svc.FolderPath(ctx, c)
	if err != nil {
		t.Fatalf("folder path: %v", err)
	}

	if path != "Media / 2026 / August" {
		t.Errorf("path = %q", path)
	}
}

// TestDeleteFolderProtected 子树内有文件时拒绝删除.
func TestDeleteFolderProtected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	root := mustCreateFolder(t, svc, "Media", nil)
	sub := mustCreateFolder(t, svc, "Inner", &root.ID)
	mustUpload(t, svc, sub.ID, "keep.txt", []byte("x"), "text/plain")

	_, err := svc.DeleteFolder(ctx, root.ID)

	var ferr *service.FolderNotEmptyError
	if !errors.As(err, &ferr) {
		t.Fatalf("want FolderNotEmptyError, got %v", err)
	}

	if ferr.Files != 1 {
		t.Errorf("blocking files = %d, want 1", ferr.Files)
	}

	// 文件删掉后整棵子树可删
	file, gerr := firstFileIn(ctx, t, svc, sub.ID)
	if gerr != nil {
		t.Fatalf("find file: %v", gerr)
	}

	if err := svc.DeleteFile(ctx, file.ID); err != nil {
		t.Fatalf("delete file: %v", err)
	}

	deleted, err := svc.DeleteFolder(ctx, root.ID)
	if err != nil {
		t.Fatalf("delete folder: %v", err)
	}

	if len(deleted) != 2 {
		t.Errorf("deleted %d folders, want 2", len(deleted))
	}

	if _, err := svc.GetFolder(ctx, sub.ID); !errors.Is(err, service.ErrFolderNotFound) {
		t.Errorf("descendant should be gone, got %v", err)
	}
}

// firstFileIn 取文件夹下第一条文件行.
func firstFileIn(ctx context.Context, t *testing.T, svc *service.CabinetService, folderID uint) (*types.FileItem, error) {
	t.Helper()

	resp, err := svc.ListFiles(ctx, &types.ListFilesQuery{Folder: strconv.FormatUint(uint64(folderID), 10)})
	if err != nil {
		return nil, err
	}

	if len(resp.Files) == 0 {
		t.Fatal("folder has no files")
	}

	return &resp.Files[0], nil
}

// TestFolderChoices 下拉项按树序排列并带完整路径标签.
func TestFolderChoices(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	media := mustCreateFolder(t, svc, "Media", nil)
	mustCreateFolder(t, svc, "Zebra", nil)
	images := mustCreateFolder(t, svc, "Images", &media.ID)
	mustCreateFolder(t, svc, "Raw", &images.ID)

	choices, err := svc.FolderChoices(ctx)
	if err != nil {
		t.Fatalf("choices: %v", err)
	}

	labels := make([]string, 0, len(choices))
	for _, ch := range choices {
		labels = append(labels, ch.Label)
	}

	want := []string{"Media", "Media / Images", "Media / Images / Raw", "Zebra"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}

	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

// TestAnnotateCounts 子文件夹数与文件数按分组查询标注.
func TestAnnotateCounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	media := mustCreateFolder(t, svc, "Media", nil)
	mustCreateFolder(t, svc, "Images", &media.ID)
	mustCreateFolder(t, svc, "Videos", &media.ID)
	mustUpload(t, svc, media.ID, "readme.txt", []byte("x"), "text/plain")

	annotated, err := svc.AnnotateCounts(ctx, []model.Folder{*media})
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}

	if len(annotated) != 1 {
		t.Fatalf("annotated %d rows, want 1", len(annotated))
	}

	if annotated[0].FolderCount != 2 {
		t.Errorf("folder count = %d, want 2", annotated[0].FolderCount)
	}

	if annotated[0].FileCount != 1 {
		t.Errorf("file count = %d, want 1", annotated[0].FileCount)
	}
}
