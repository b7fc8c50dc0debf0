package service_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/yeisme/mediacabinet/pkg/cache"
	ctxPkg "github.com/yeisme/mediacabinet/pkg/context"
	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/service"
	"github.com/yeisme/mediacabinet/pkg/internal/storage/kv"
	"github.com/yeisme/mediacabinet/pkg/internal/types"
)

// TestListRootView 根视图只列根文件夹，不列任何文件.
func TestListRootView(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	media := mustCreateFolder(t, svc, "Media", nil)
	mustCreateFolder(t, svc, "Archive", nil)
	mustCreateFolder(t, svc, "Inner", &media.ID)
	mustUpload(t, svc, media.ID, "top.txt", []byte("x"), "text/plain")

	resp, err := svc.ListFiles(ctx, &types.ListFilesQuery{})
	if err != nil {
		t.Fatalf("list root: %v", err)
	}

	if resp.Folder != nil {
		t.Error("root view has no current folder")
	}

	if len(resp.Folders) != 2 {
		t.Fatalf("root folders = %d, want 2", len(resp.Folders))
	}

	// 按名称排序
	if resp.Folders[0].Name != "Archive" || resp.Folders[1].Name != "Media" {
		t.Errorf("folders out of order: %q, %q", resp.Folders[0].Name, resp.Folders[1].Name)
	}

	if len(resp.Files) != 0 {
		t.Errorf("root view lists %d files, want 0", len(resp.Files))
	}
}

// TestListFolderView 文件夹视图列子文件夹与直属文件.
func TestListFolderView(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	media := mustCreateFolder(t, svc, "Media", nil)
	mustCreateFolder(t, svc, "Inner", &media.ID)
	mustUpload(t, svc, media.ID, "beta.txt", []byte("b"), "text/plain")
	mustUpload(t, svc, media.ID, "alpha.txt", []byte("a"), "text/plain")

	resp, err := svc.ListFiles(ctx, &types.ListFilesQuery{Folder: strconv.FormatUint(uint64(media.ID), 10)})
	if err != nil {
		t.Fatalf("list folder: %v", err)
	}

	if resp.Folder == nil || resp.Folder.ID != media.ID {
		t.Fatal("current folder missing from response")
	}

	if resp.Folder.Path != "Media" {
		t.Errorf("path = %q, want Media", resp.Folder.Path)
	}

	if len(resp.Folders) != 1 || resp.Folders[0].Name != "Inner" {
		t.Errorf("subfolders = %v", resp.Folders)
	}

	if len(resp.Files) != 2 {
		t.Fatalf("files = %d, want 2", len(resp.Files))
	}

	if resp.Files[0].FileName > resp.Files[1].FileName {
		t.Error("files not ordered by name")
	}
}

// TestListStaleSelector 失效的文件夹参数回落根视图并标记 Stale.
func TestListStaleSelector(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreateFolder(t, svc, "Media", nil)

	resp, err := svc.ListFiles(ctx, &types.ListFilesQuery{Folder: "9999"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if !resp.Stale {
		t.Error("missing folder id should set Stale")
	}

	if resp.Folder != nil {
		t.Error("stale selector must fall back to root view")
	}

	resp, err = svc.ListFiles(ctx, &types.ListFilesQuery{Folder: "not-a-number"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if !resp.Stale {
		t.Error("malformed folder id should set Stale")
	}
}

// TestSearchGlobal 搜索忽略文件夹参数，命中带祖先路径.
func TestSearchGlobal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	media := mustCreateFolder(t, svc, "Media", nil)
	inner := mustCreateFolder(t, svc, "Inner", &media.ID)
	other := mustCreateFolder(t, svc, "Other", nil)

	mustUpload(t, svc, inner.ID, "report-2026.pdf", []byte("%PDF"), "application/pdf")
	mustUpload(t, svc, other.ID, "report-old.pdf", []byte("%PDF"), "application/pdf")
	mustUpload(t, svc, other.ID, "photo.txt", []byte("x"), "text/plain")

	// 指定了别的文件夹，但搜索是全局的
	resp, err := svc.ListFiles(ctx, &types.ListFilesQuery{
		Folder: strconv.FormatUint(uint64(media.ID), 10),
		Q:      "report",
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if resp.Query != "report" {
		t.Errorf("query echo = %q", resp.Query)
	}

	if len(resp.Files) != 2 {
		t.Fatalf("hits = %d, want 2", len(resp.Files))
	}

	paths := map[string]string{}
	for _, f := range resp.Files {
		paths[f.FileName] = f.Path
	}

	for name, path := range paths {
		switch {
		case path == "Media / Inner", path == "Other":
		default:
			t.Errorf("hit %q has unexpected path %q", name, path)
		}
	}
}

// TestSearchFileTypeFilter file_type 过滤按派生类型匹配.
func TestSearchFileTypeFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	docs := mustCreateFolder(t, svc, "Docs", nil)
	mustUpload(t, svc, docs.ID, "a.pdf", []byte("%PDF"), "application/pdf")
	mustUpload(t, svc, docs.ID, "a.zip", []byte("PK"), "application/zip")

	resp, err := svc.ListFiles(ctx, &types.ListFilesQuery{Q: "a", FileType: "pdf"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(resp.Files) != 1 || resp.Files[0].DownloadType != "pdf" {
		t.Errorf("filtered hits = %v", resp.Files)
	}
}

// TestMoveFiles 批量移动更新归属并统计行数.
func TestMoveFiles(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	from := mustCreateFolder(t, svc, "From", nil)
	to := mustCreateFolder(t, svc, "To", nil)

	a := mustUpload(t, svc, from.ID, "a.txt", []byte("a"), "text/plain")
	b := mustUpload(t, svc, from.ID, "b.txt", []byte("b"), "text/plain")

	resp, err := svc.MoveFiles(ctx, &types.MoveFilesRequest{IDs: []uint{a.ID, b.ID}, Folder: to.ID})
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	if resp.Moved != 2 {
		t.Errorf("moved = %d, want 2", resp.Moved)
	}

	moved, err := svc.GetFile(ctx, a.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	if moved.FolderID != to.ID {
		t.Errorf("folder = %d, want %d", moved.FolderID, to.ID)
	}

	// 目标文件夹不存在
	_, err = svc.MoveFiles(ctx, &types.MoveFilesRequest{IDs: []uint{a.ID}, Folder: 9999})

	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("missing target: want ValidationError, got %v", err)
	}
}

// newListCache 装配内存 KV 的列表缓存.
func newListCache(t *testing.T) *cache.Cache {
	t.Helper()

	store, err := kv.NewMemoryKV(context.Background(), nil)
	if err != nil {
		t.Fatalf("memory kv: %v", err)
	}

	return cache.NewCache(store)
}

// TestLastFolderPerUser folder=last 按操作者各自记忆，互不串台.
func TestLastFolderPerUser(t *testing.T) {
	svc, _ := newTestService(t)
	svc.WithListCache(newListCache(t))

	alice := ctxPkg.WithUser(context.Background(), "alice@example.com")
	bob := ctxPkg.WithUser(context.Background(), "bob@example.com")

	media := mustCreateFolder(t, svc, "Media", nil)
	docs := mustCreateFolder(t, svc, "Docs", nil)

	// 两人各自浏览不同文件夹
	if _, err := svc.ListFiles(alice, &types.ListFilesQuery{Folder: strconv.FormatUint(uint64(media.ID), 10)}); err != nil {
		t.Fatalf("alice list: %v", err)
	}

	if _, err := svc.ListFiles(bob, &types.ListFilesQuery{Folder: strconv.FormatUint(uint64(docs.ID), 10)}); err != nil {
		t.Fatalf("bob list: %v", err)
	}

	resp, err := svc.ListFiles(alice, &types.ListFilesQuery{Folder: service.FolderSelectorLast})
	if err != nil {
		t.Fatalf("alice last: %v", err)
	}

	if resp.Folder == nil || resp.Folder.ID != media.ID {
		t.Errorf("alice last folder = %+v, want Media", resp.Folder)
	}

	resp, err = svc.ListFiles(bob, &types.ListFilesQuery{Folder: service.FolderSelectorLast})
	if err != nil {
		t.Fatalf("bob last: %v", err)
	}

	if resp.Folder == nil || resp.Folder.ID != docs.ID {
		t.Errorf("bob last folder = %+v, want Docs", resp.Folder)
	}

	// 从未浏览过的操作者回落根视图
	resp, err = svc.ListFiles(ctxPkg.WithUser(context.Background(), "carol@example.com"),
		&types.ListFilesQuery{Folder: service.FolderSelectorLast})
	if err != nil {
		t.Fatalf("carol last: %v", err)
	}

	if resp.Folder != nil {
		t.Errorf("carol has no last folder, got %+v", resp.Folder)
	}
}

// TestLastFolderRefreshOnCacheHit 列表命中缓存时同样刷新 last folder.
func TestLastFolderRefreshOnCacheHit(t *testing.T) {
	lib := testLibConfig()
	lib.ListCacheTTL = 60

	svc, _ := newTestServiceWithLib(t, lib)
	svc.WithListCache(newListCache(t))

	user := ctxPkg.WithUser(context.Background(), "alice@example.com")

	media := mustCreateFolder(t, svc, "Media", nil)
	docs := mustCreateFolder(t, svc, "Docs", nil)

	mediaQ := &types.ListFilesQuery{Folder: strconv.FormatUint(uint64(media.ID), 10)}

	// 第一次浏览 Media 落缓存，再浏览 Docs 改写记忆
	if _, err := svc.ListFiles(user, mediaQ); err != nil {
		t.Fatalf("list media: %v", err)
	}

	if _, err := svc.ListFiles(user, &types.ListFilesQuery{Folder: strconv.FormatUint(uint64(docs.ID), 10)}); err != nil {
		t.Fatalf("list docs: %v", err)
	}

	// 回到 Media：此时命中缓存，记忆仍须被刷新
	if _, err := svc.ListFiles(user, mediaQ); err != nil {
		t.Fatalf("list media again: %v", err)
	}

	resp, err := svc.ListFiles(user, &types.ListFilesQuery{Folder: service.FolderSelectorLast})
	if err != nil {
		t.Fatalf("last: %v", err)
	}

	if resp.Folder == nil || resp.Folder.ID != media.ID {
		t.Errorf("last folder = %+v, want Media", resp.Folder)
	}
}
