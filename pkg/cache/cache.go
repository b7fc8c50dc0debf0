// Package cache 在 KV 存储之上提供类型安全的泛型缓存.
//
// 媒体库里有两类典型用法：
//   - 文件列表缓存：以"版本号 + 查询参数哈希"做键，写路径只旋转版本号即可整体失效
//   - 响应缓存：中间件把完整 HTTP 响应作为条目存入
//
// 值统一经 sonic 做 JSON 编解码，TTL 传 0 表示不过期（由底层 KV 决定语义）.
// 缓存未命中以 error 形式返回，调用方自行回源；该包不做击穿保护.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/mediacabinet/pkg/internal/storage/kv"
)

// Cache 绑定一个 KV 后端.
type Cache struct {
	kvStore kv.KVStore
}

// NewCache 以给定 KV 后端创建缓存.
func NewCache(kvStore kv.KVStore) *Cache {
	return &Cache{kvStore: kvStore}
}

// Get 读取并反序列化键值，未命中或类型不符返回错误.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var value T

	raw, err := c.kvStore.Get(ctx, key)
	if err != nil {
		return value, err
	}

	if err := sonic.Unmarshal(raw, &value); err != nil {
		var zero T
		return zero, fmt.Errorf("unmarshal cache value %q: %w", key, err)
	}

	return value, nil
}

// Set 序列化并写入键值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	raw, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value %q: %w", key, err)
	}

	return c.kvStore.Set(ctx, key, raw, ttl)
}

// GetOrSet 未命中时调用 getter 回源并写回.
// 写回失败不视为错误，回源结果仍然返回给调用方.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	value, err := getter()
	if err != nil {
		var zero T
		return zero, err
	}

	_ = Set(ctx, c, key, value, ttl)

	return value, nil
}

// Delete 删除单个键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, key)
}

// Exists 判断键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, key)
}

// Clear 枚举并删除全部键，仅用于调试或测试，生产按版本号整体失效.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.kvStore.Keys(ctx, "*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := c.kvStore.Delete(ctx, key); err != nil {
			return err
		}
	}

	return nil
}
