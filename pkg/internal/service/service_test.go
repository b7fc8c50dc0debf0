package service_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/glebarez/sqlite"

	"github.com/yeisme/mediacabinet/pkg/configs"
	"github.com/yeisme/mediacabinet/pkg/internal/service"
	"github.com/yeisme/mediacabinet/pkg/internal/storage/s3"
	"github.com/yeisme/mediacabinet/pkg/internal/variant"
)

// fakeStore 内存对象存储，记录删除动作便于断言清理行为.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data

	return nil
}

func (s *fakeStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %q not found", key)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	s.removed = append(s.removed, key)

	return nil
}

func (s *fakeStore) Stat(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[key]
	if !ok {
		return 0, fmt.Errorf("object %q: %w", key, s3.ErrObjectNotFound)
	}

	return int64(len(data)), nil
}

func (s *fakeStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}

	return keys, nil
}

func (s *fakeStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

// bytesOf 读取存储中的对象内容.
func (s *fakeStore) bytesOf(t *testing.T, key string) []byte {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[key]
	if !ok {
		t.Fatalf("object %q not in store", key)
	}

	return data
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.objects[key]

	return ok
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.objects)
}

// testLibConfig 测试用的媒体库配置.
func testLibConfig() configs.LibraryConfig {
	return configs.LibraryConfig{
		KeyPrefix:       "cabinet",
		MaxUploadSizeMB: 64,
		AllowOverwrite:  true,
		DefaultPPOI:     "0.5x0.5",
		ListCacheTTL:    0,
		PresignExpiry:   900,
	}
}

// newTestService 装配内存 sqlite 与内存对象存储的服务实例.
func newTestService(t *testing.T) (*service.CabinetService, *fakeStore) {
	t.Helper()

	return newTestServiceWithLib(t, testLibConfig())
}

// newTestServiceWithLib 使用指定媒体库配置装配服务实例.
func newTestServiceWithLib(t *testing.T, lib configs.LibraryConfig) (*service.CabinetService, *fakeStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// 内存库随连接存在，限制连接池避免各连接各见一张空库
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
	svc := service.NewCabinetServiceWith(db, store, manifest, lib)

	if err := svc.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return svc, store
}

// pngBytes 生成指定尺寸的 PNG 内容.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	return buf.Bytes()
}

// imagePending 构造图片内容的待提交对象.
func imagePending(t *testing.T, name string, w, h int) *variant.Pending {
	t.Helper()

	return &variant.Pending{Name: name, ContentType: "image/png", Data: pngBytes(t, w, h)}
}

// downloadPending 构造非图片内容的待提交对象.
func downloadPending(name string, data []byte) *variant.Pending {
	return &variant.Pending{Name: name, ContentType: "application/octet-stream", Data: data}
}
