// Package storage 处理存储操作：S3 对象存储、数据库、KV 缓存与消息队列.
//
// Example:
//
// 初始化
//
//	 ctx := context.Background()
//	 mgr, err := storage.Init(ctx)
//
//		if err != nil {
//		    // 处理错误
//		}
//
// 获取存储客户端
//
//	s3Client := mgr.GetS3Client()
//	dbClient := mgr.GetDBClient()
package storage

import (
	"context"
	"sync"

	"github.com/yeisme/mediacabinet/pkg/configs"
	dbc "github.com/yeisme/mediacabinet/pkg/internal/storage/db"
	kvc "github.com/yeisme/mediacabinet/pkg/internal/storage/kv"
	mqc "github.com/yeisme/mediacabinet/pkg/internal/storage/mq"
	s3c "github.com/yeisme/mediacabinet/pkg/internal/storage/s3"
	nlog "github.com/yeisme/mediacabinet/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	S3 *s3c.Client
	DB *dbc.Client
	KV *kvc.Client
	MQ *mqc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置.重复调用只返回已初始化实例.
// DB 与 S3 是硬依赖，失败即报错；KV 与 MQ 失败时降级为 nil，相关功能自动停用.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		m.DB, err = dbc.New(ctx)
		if err != nil {
			return
		}

		m.S3, err = s3c.New(ctx, &cfg.S3)
		if err != nil {
			return
		}

		if kvi, e := kvc.NewKVClient(ctx); e != nil {
			nlog.Logger().Warn().Err(e).Msg("kv unavailable, list cache disabled")
		} else {
			m.KV = kvi
		}

		if cfg.Events.Enabled {
			if mqi, e := mqc.New(ctx); e != nil {
				nlog.Logger().Warn().Err(e).Msg("mq unavailable, lifecycle events disabled")
			} else {
				m.MQ = mqi
			}
		}

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetS3Client 获取 S3 客户端.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}
