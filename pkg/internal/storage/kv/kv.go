// Package kv 提供键值缓存的统一接口，列表缓存与响应缓存建立在它之上.
// 后端按类型注册，默认 groupcache，可切换 memory、redis 或 NATS KV.
package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/yeisme/mediacabinet/pkg/configs"
)

// KVType 键值后端类型.
type KVType string

const (
	KVTypeMemory     KVType = "memory"
	KVTypeRedis      KVType = "redis"
	KVTypeNATS       KVType = "nats"
	KVTypeGroupcache KVType = "groupcache"
)

// KVStore 键值存储接口，ttl 为零表示不过期.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Keys 按模式列出键，仅用于调试与测试.
	Keys(ctx context.Context, pattern string) ([]string, error)
	Close() error
}

// Client 包装选中的后端，嵌入后直接暴露 KVStore 方法.
type Client struct {
	KVStore
}

// KVFactory 按后端各自的子配置创建 KVStore.
type KVFactory func(ctx context.Context, config any) (KVStore, error)

var kvFactories = make(map[KVType]KVFactory)

// RegisterKVFactory 注册后端工厂，由各后端文件的 init 调用.
func RegisterKVFactory(kvType KVType, factory KVFactory) {
	kvFactories[kvType] = factory
}

// GetRegisteredKVTypes 返回编译进来的后端类型.
func GetRegisteredKVTypes() []KVType {
	types := make([]KVType, 0, len(kvFactories))
	for kvType := range kvFactories {
		types = append(types, kvType)
	}

	return types
}

// NewKVStore 按类型创建存储实例，config 为对应后端的子配置.
func NewKVStore(ctx context.Context, kvType KVType, config any) (KVStore, error) {
	factory, exists := kvFactories[kvType]
	if !exists {
		return nil, fmt.Errorf("unsupported KV type: %s", kvType)
	}

	return factory(ctx, config)
}

// NewKVClient 按全局配置创建客户端，把类型对应的子配置交给工厂.
func NewKVClient(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().KV

	var sub any

	switch KVType(cfg.Type) {
	case KVTypeRedis:
		sub = &cfg.Redis
	case KVTypeNATS:
		sub = &cfg.NATS
	case KVTypeGroupcache:
		sub = &cfg.Groupcache
	}

	store, err := NewKVStore(ctx, KVType(cfg.Type), sub)
	if err != nil {
		return nil, err
	}

	return &Client{KVStore: store}, nil
}
