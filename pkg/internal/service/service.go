// Package service 实现媒体库核心业务：变体分发后的保存协议、文件夹树
// 操作、列表与搜索.元数据走 GORM 事务，字节走对象存储；两者之间的排序
// 规则见 SaveFile.
package service

import (
	"context"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/mediacabinet/pkg/cache"
	"github.com/yeisme/mediacabinet/pkg/configs"
	ctxPkg "github.com/yeisme/mediacabinet/pkg/context"
	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/storage/mq"
	"github.com/yeisme/mediacabinet/pkg/internal/variant"
)

// ObjectStore 保存协议消费的对象存储操作集合，生产实现是 storage/s3 的
// Client，测试用内存实现.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	Stat(ctx context.Context, key string) (int64, error)
	List(ctx context.Context, prefix string) ([]string, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// CabinetService 媒体库服务.
type CabinetService struct {
	db        *gorm.DB
	store     ObjectStore
	mqClient  *mq.Client
	listCache *cache.Cache
	manifest  *variant.Manifest
	lib       configs.LibraryConfig
}

// NewCabinetService 从请求上下文装配服务，客户端由 storage.Manager 注入.
func NewCabinetService(c context.Context, manifest *variant.Manifest) *CabinetService {
	svc := &CabinetService{
		mqClient: ctxPkg.GetMQClient(c),
		manifest: manifest,
		lib:      configs.GetConfig().Library,
	}

	if dbc := ctxPkg.GetDBClient(c); dbc != nil {
		svc.db = dbc.GetDB()
	}

	if s3c := ctxPkg.GetS3Client(c); s3c != nil {
		svc.store = s3c
	}

	if kvc := ctxPkg.GetKVClient(c); kvc != nil {
		svc.listCache = cache.NewCache(kvc.KVStore)
	}

	return svc
}

// NewCabinetServiceWith 直接注入依赖的装配方式，测试使用.
func NewCabinetServiceWith(db *gorm.DB, store ObjectStore, manifest *variant.Manifest, lib configs.LibraryConfig) *CabinetService {
	return &CabinetService{
		db:       db,
		store:    store,
		manifest: manifest,
		lib:      lib,
	}
}

// WithListCache 注入列表与 last-folder 缓存后返回自身；
// 生产路径由 NewCabinetService 从 KV 客户端装配，测试直接注入.
func (s *CabinetService) WithListCache(c *cache.Cache) *CabinetService {
	s.listCache = c
	return s
}

// Manifest 返回当前实体类型的变体清单.
func (s *CabinetService) Manifest() *variant.Manifest {
	return s.manifest
}

// Migrate 建表.
func (s *CabinetService) Migrate() error {
	return s.db.AutoMigrate(&model.Folder{}, &model.File{})
}
