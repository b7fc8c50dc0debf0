package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/glebarez/sqlite"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/service"
	"github.com/yeisme/mediacabinet/pkg/internal/types"
	"github.com/yeisme/mediacabinet/pkg/internal/variant"
)

// mustCreateFolder 创建测试文件夹.
func mustCreateFolder(t *testing.T, svc *service.CabinetService, name string, parentID *uint) *model.Folder {
	t.Helper()

	folder, err := svc.CreateFolder(context.Background(), &types.CreateFolderRequest{Name: name, ParentID: parentID})
	if err != nil {
		t.Fatalf("create folder %q: %v", name, err)
	}

	return folder
}

// mustUpload 上传一份内容并返回文件行.
func mustUpload(t *testing.T, svc *service.CabinetService, folderID uint, name string, data []byte, contentType string) *model.File {
	t.Helper()

	pending := downloadPending(name, data)
	pending.ContentType = contentType

	file, err := svc.UploadFile(context.Background(), &types.UploadFileRequest{Folder: folderID}, pending)
	if err != nil {
		t.Fatalf("upload %q: %v", name, err)
	}

	return file
}

// TestUploadImage 图片上传走完整保存协议：落键、记录尺寸、派生文件名.
func TestUploadImage(t *testing.T) {
	svc, store := newTestService(t)
	folder := mustCreateFolder(t, svc, "Pictures", nil)

	data := pngBytes(t, 8, 6)
	file := mustUpload(t, svc, folder.ID, "holiday photo.png", data, "image/png")

	if file.ImageFile == "" {
		t.Fatal("image slot not populated")
	}

	if file.DownloadFile != "" {
		t.Errorf("download slot should be empty, got %q", file.DownloadFile)
	}

	wantPrefix := "cabinet/" + time.Now().UTC().Format("2006/01") + "/"
	if !strings.HasPrefix(file.ImageFile, wantPrefix) {
		t.Errorf("key %q missing date prefix %q", file.ImageFile, wantPrefix)
	}

	if strings.Contains(file.ImageFile, " ") {
		t.Errorf("key %q contains unsafe characters", file.ImageFile)
	}

	if file.ImageWidth == nil || *file.ImageWidth != 8 {
		t.Errorf("image width = %v, want 8", file.ImageWidth)
	}

	if file.ImageHeight == nil || *file.ImageHeight != 6 {
		t.Errorf("image height = %v, want 6", file.ImageHeight)
	}

	if file.FileName == "" || strings.Contains(file.FileName, "/") {
		t.Errorf("file name %q should be the key basename", file.FileName)
	}

	if file.FileSize != int64(len(data)) {
		t.Errorf("file size = %d, want %d", file.FileSize, len(data))
	}

	if file.Overwrite {
		t.Error("overwrite flag must be reset after save")
	}

	if got := store.bytesOf(t, file.ImageFile); !bytes.Equal(got, data) {
		t.Error("stored bytes differ from upload")
	}
}

// TestUploadDownload 非图片内容落入下载槽位并派生类型.
func TestUploadDownload(t *testing.T) {
	svc, _ := newTestService(t)
	folder := mustCreateFolder(t, svc, "Documents", nil)

	file := mustUpload(t, svc, folder.ID, "annual report.pdf", []byte("%PDF-1.7"), "application/pdf")

	if file.DownloadFile == "" {
		t.Fatal("download slot not populated")
	}

	if file.ImageFile != "" {
		t.Errorf("image slot should be empty, got %q", file.ImageFile)
	}

	if file.DownloadType != "pdf" {
		t.Errorf("download type = %q, want pdf", file.DownloadType)
	}
}

// TestUploadValidation 上传前置校验：空内容、不存在的文件夹、超限.
func TestUploadValidation(t *testing.T) {
	svc, _ := newTestService(t)
	folder := mustCreateFolder(t, svc, "Inbox", nil)

	ctx := context.Background()

	_, err := svc.UploadFile(ctx, &types.UploadFileRequest{Folder: folder.ID}, downloadPending("empty.txt", nil))

	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("empty upload: want ValidationError, got %v", err)
	}

	_, err = svc.UploadFile(ctx, &types.UploadFileRequest{Folder: 9999}, downloadPending("a.txt", []byte("x")))
	if !errors.As(err, &verr) {
		t.Fatalf("missing folder: want ValidationError, got %v", err)
	}

	lib := testLibConfig()
	lib.MaxUploadSizeMB = 1
	small, _ := newTestServiceWithLib(t, lib)
	f2 := mustCreateFolder(t, small, "Inbox", nil)

	oversize := make([]byte, 1<<20+1)

	_, err = small.UploadFile(ctx, &types.UploadFileRequest{Folder: f2.ID}, downloadPending("big.bin", oversize))
	if !errors.As(err, &verr) {
		t.Fatalf("oversize upload: want ValidationError, got %v", err)
	}
}

// TestUploadSameNameTwice 同名上传各得其键.
func TestUploadSameNameTwice(t *testing.T) {
	svc, store := newTestService(t)
	folder := mustCreateFolder(t, svc, "Docs", nil)

	first := mustUpload(t, svc, folder.ID, "notes.txt", []byte("one"), "text/plain")
	second := mustUpload(t, svc, folder.ID, "notes.txt", []byte("two"), "text/plain")

	if first.DownloadFile == second.DownloadFile {
		t.Fatalf("both uploads share key %q", first.DownloadFile)
	}

	if store.count() != 2 {
		t.Errorf("store holds %d objects, want 2", store.count())
	}
}

// TestReplaceContentNewKey 默认替换换新键，旧对象在行保存后被清理.
func TestReplaceContentNewKey(t *testing.T) {
	svc, store := newTestService(t)
	folder := mustCreateFolder(t, svc, "Docs", nil)

	file := mustUpload(t, svc, folder.ID, "draft.txt", []byte("version A"), "text/plain")
	oldKey := file.DownloadFile

	updated, err := svc.ReplaceContent(context.Background(), file.ID, false, downloadPending("draft.txt", []byte("version B")))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	if updated.DownloadFile == oldKey {
		t.Fatal("replace without overwrite must allocate a new key")
	}

	if store.has(oldKey) {
		t.Error("old object should be removed after row save")
	}

	if got := store.bytesOf(t, updated.DownloadFile); !bytes.Equal(got, []byte("version B")) {
		t.Error("new key holds wrong bytes")
	}
}

// TestReplaceContentOverwrite 覆盖替换保键换字节，返回后标志归零.
func TestReplaceContentOverwrite(t *testing.T) {
	svc, store := newTestService(t)
	folder := mustCreateFolder(t, svc, "Docs", nil)

	file := mustUpload(t, svc, folder.ID, "draft.txt", []byte("version A"), "text/plain")
	oldKey := file.DownloadFile

	updated, err := svc.ReplaceContent(context.Background(), file.ID, true, downloadPending("renamed.txt", []byte("version B")))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	if updated.DownloadFile != oldKey {
		t.Fatalf("overwrite must keep key %q, got %q", oldKey, updated.DownloadFile)
	}

	if got := store.bytesOf(t, oldKey); !bytes.Equal(got, []byte("version B")) {
		t.Error("overwritten key holds stale bytes")
	}

	if updated.Overwrite {
		t.Error("overwrite flag must be reset after save")
	}

	// 行里也不能留下标志
	fresh, err := svc.GetFile(context.Background(), file.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	if fresh.Overwrite {
		t.Error("overwrite flag must not persist")
	}
}

// TestReplaceContentOverwriteDisabled 配置关闭覆盖时退回默认替换.
func TestReplaceContentOverwriteDisabled(t *testing.T) {
	lib := testLibConfig()
	lib.AllowOverwrite = false
	svc, _ := newTestServiceWithLib(t, lib)
	folder := mustCreateFolder(t, svc, "Docs", nil)

	file := mustUpload(t, svc, folder.ID, "draft.txt", []byte("version A"), "text/plain")
	oldKey := file.DownloadFile

	updated, err := svc.ReplaceContent(context.Background(), file.ID, true, downloadPending("draft.txt", []byte("version B")))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	if updated.DownloadFile == oldKey {
		t.Error("overwrite disabled by config, key must change")
	}
}

// TestReplaceSwitchesVariant 图片换成压缩包：槽位迁移，图片元数据清空.
func TestReplaceSwitchesVariant(t *testing.T) {
	svc, store := newTestService(t)
	folder := mustCreateFolder(t, svc, "Mixed", nil)

	pending := imagePending(t, "cover.png", 4, 4)

	file, err := svc.UploadFile(context.Background(), &types.UploadFileRequest{Folder: folder.ID}, pending)
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}

	imageKey := file.ImageFile

	updated, err := svc.ReplaceContent(context.Background(), file.ID, false, downloadPending("bundle.zip", []byte("PK\x03\x04")))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	if updated.ImageFile != "" {
		t.Errorf("image slot should be cleared, got %q", updated.ImageFile)
	}

	if updated.ImageWidth != nil || updated.ImageHeight != nil {
		t.Error("image dimensions should be cleared")
	}

	if updated.DownloadFile == "" {
		t.Fatal("download slot not populated")
	}

	if updated.DownloadType != "zip" {
		t.Errorf("download type = %q, want zip", updated.DownloadType)
	}

	if store.has(imageKey) {
		t.Error("replaced image object should be removed")
	}
}

// TestUpdateFileMetaKeepsContent 纯元数据保存不触碰对象.
func TestUpdateFileMetaKeepsContent(t *testing.T) {
	svc, store := newTestService(t)
	folder := mustCreateFolder(t, svc, "Docs", nil)
	other := mustCreateFolder(t, svc, "Archive", nil)

	file := mustUpload(t, svc, folder.ID, "draft.txt", []byte("content"), "text/plain")
	key := file.DownloadFile

	caption := "final draft"

	updated, err := svc.UpdateFileMeta(context.Background(), file.ID, &types.UpdateFileRequest{
		Caption:  &caption,
		FolderID: &other.ID,
	})
	if err != nil {
		t.Fatalf("update meta: %v", err)
	}

	if updated.Caption != caption {
		t.Errorf("caption = %q, want %q", updated.Caption, caption)
	}

	if updated.FolderID != other.ID {
		t.Errorf("folder = %d, want %d", updated.FolderID, other.ID)
	}

	if updated.DownloadFile != key {
		t.Errorf("metadata save must not change key: %q != %q", updated.DownloadFile, key)
	}

	if got := store.bytesOf(t, key); !bytes.Equal(got, []byte("content")) {
		t.Error("metadata save must not change bytes")
	}
}

// TestDeleteFile 删除行并清理全部对象.
func TestDeleteFile(t *testing.T) {
	svc, store := newTestService(t)
	folder := mustCreateFolder(t, svc, "Docs", nil)

	file := mustUpload(t, svc, folder.ID, "draft.txt", []byte("bye"), "text/plain")

	if err := svc.DeleteFile(context.Background(), file.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.GetFile(context.Background(), file.ID); !errors.Is(err, service.ErrFileNotFound) {
		t.Errorf("want ErrFileNotFound, got %v", err)
	}

	if store.count() != 0 {
		t.Errorf("store still holds %d objects", store.count())
	}
}

// TestPresignFile 预签名链接指向当前槽位对象.
func TestPresignFile(t *testing.T) {
	svc, _ := newTestService(t)
	folder := mustCreateFolder(t, svc, "Docs", nil)

	file := mustUpload(t, svc, folder.ID, "draft.txt", []byte("x"), "text/plain")

	url, err := svc.PresignFile(context.Background(), file)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	if url != "https://cdn.test/"+file.DownloadFile {
		t.Errorf("unexpected presigned url %q", url)
	}
}

// flakyStatStore 包装内存存储，Stat 一律返回瞬时故障.
type flakyStatStore struct {
	*fakeStore
}

func (s *flakyStatStore) Stat(ctx context.Context, key string) (int64, error) {
	return 0, fmt.Errorf("stat %s: connection reset", key)
}

// TestUniqueKeyStatFailure Stat 故障时不能把基础键当作空闲：既有对象
// 的字节必须原样保留，新内容落到带后缀的新键下.
func TestUniqueKeyStatFailure(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(1)

	manifest, err := variant.DefaultManifest(variant.DefaultPPOI)
	if err != nil {
		t.Fatalf("default manifest: %v", err)
	}

	inner := newFakeStore()
	store := &flakyStatStore{fakeStore: inner}
	svc := service.NewCabinetServiceWith(db, store, manifest, testLibConfig())

	if err := svc.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	folder := mustCreateFolder(t, svc, "Docs", nil)

	// 基础键下已有别人的字节
	baseKey := "cabinet/" + time.Now().UTC().Format("2006/01") + "/a.txt"
	if err := inner.Put(context.Background(), baseKey, strings.NewReader("occupied"), 8, "text/plain"); err != nil {
		t.Fatalf("seed object: %v", err)
	}

	file := mustUpload(t, svc, folder.ID, "a.txt", []byte("fresh"), "text/plain")

	if file.DownloadFile == baseKey {
		t.Fatalf("upload reused base key %q despite stat failure", baseKey)
	}

	if got := string(inner.bytesOf(t, baseKey)); got != "occupied" {
		t.Errorf("preexisting object clobbered, content = %q", got)
	}

	if got := string(inner.bytesOf(t, file.DownloadFile)); got != "fresh" {
		t.Errorf("uploaded content = %q, want fresh", got)
	}
}
