package service_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/glebarez/sqlite"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/service"
	"github.com/yeisme/mediacabinet/pkg/internal/variant"
)

// newArchiveFixture 直接保留 db 句柄，便于插入同名文件行构造归档冲突.
func newArchiveFixture(t *testing.T) (*service.CabinetService, *fakeStore, *gorm.DB) {
	t.Helper()

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

	store := newFakeStore()
	svc := service.NewCabinetServiceWith(db, store, manifest, testLibConfig())

	if err := svc.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return svc, store, db
}

// putObject 直接向对象存储放内容.
func putObject(t *testing.T, store *fakeStore, key, content string) {
	t.Helper()

	if err := store.Put(context.Background(), key, strings.NewReader(content), int64(len(content)), "text/plain"); err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
}

// TestArchiveFolderLayout 归档按数据库树形布局，同目录同名文件追加随机后缀去重.
func TestArchiveFolderLayout(t *testing.T) {
	svc, store, db := newArchiveFixture(t)
	ctx := context.Background()

	media := mustCreateFolder(t, svc, "Media", nil)
	sub := mustCreateFolder(t, svc, "Sub", &media.ID)

	// 不同月份上传的同名文件：对象键不同，展示名相同
	putObject(t, store, "cabinet/2026/07/a.txt", "alpha")
	putObject(t, store, "cabinet/2026/08/a.txt", "beta")
	putObject(t, store, "cabinet/2026/08/b.txt", "gamma")

	rows := []model.File{
		{FolderID: media.ID, FileName: "a.txt", DownloadFile: "cabinet/2026/07/a.txt", DownloadType: "txt", FileSize: 5},
		{FolderID: media.ID, FileName: "a.txt", DownloadFile: "cabinet/2026/08/a.txt", DownloadType: "txt", FileSize: 4},
		{FolderID: sub.ID, FileName: "b.txt", DownloadFile: "cabinet/2026/08/b.txt", DownloadType: "txt", FileSize: 5},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("insert file row: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := svc.ArchiveFolder(ctx, media.ID, &buf); err != nil {
		t.Fatalf("archive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}

	entries := make(map[string]string, len(zr.File))

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}

		var content bytes.Buffer
		if _, err := content.ReadFrom(rc); err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}

		rc.Close()
		entries[f.Name] = content.String()
	}

	if len(entries) != 3 {
		t.Fatalf("entries = %d (%v), want 3", len(entries), entries)
	}

	if entries["Media/Sub/b.txt"] != "gamma" {
		t.Errorf("Media/Sub/b.txt = %q, want gamma", entries["Media/Sub/b.txt"])
	}

	if _, ok := entries["Media/a.txt"]; !ok {
		t.Fatal("missing entry Media/a.txt")
	}

	deduped := ""

	for name := range entries {
		if name != "Media/a.txt" && strings.HasPrefix(name, "Media/a_") && strings.HasSuffix(name, ".txt") {
			deduped = name
		}
	}

	if deduped == "" {
		t.Fatalf("no dedupe entry for second a.txt, entries: %v", entries)
	}

	got := map[string]bool{entries["Media/a.txt"]: true, entries[deduped]: true}
	if !got["alpha"] || !got["beta"] {
		t.Errorf("a.txt contents = %v, want alpha and beta", got)
	}
}

// TestArchiveFolderMissing 归档不存在的文件夹返回未找到.
func TestArchiveFolderMissing(t *testing.T) {
	svc, _, _ := newArchiveFixture(t)

	var buf bytes.Buffer
	if err := svc.ArchiveFolder(context.Background(), 9999, &buf); !errors.Is(err, service.ErrFolderNotFound) {
		t.Errorf("want ErrFolderNotFound, got %v", err)
	}
}
