package kv

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryKV 进程内 KV 实现，单机部署与测试用.
type MemoryKV struct {
	data sync.Map
}

// NewMemoryKV 创建内存 KV，忽略 config.
func NewMemoryKV(ctx context.Context, config any) (KVStore, error) {
	return &MemoryKV{}, nil
}

// Get 读取键值，过期条目惰性删除.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := m.data.Load(key)
	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}

	raw, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("invalid value type for key: %s", key)
	}

	val, expired, _, err := decodeWithTTL(raw, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		m.data.Delete(key)
		return nil, fmt.Errorf("key not found: %s", key)
	}

	out := make([]byte, len(val))
	copy(out, val)

	return out, nil
}

// Set 写入键值，ttl>0 时包装过期时间.
func (m *MemoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, wrapped, err := encodeWithTTL(value, ttl)
	if err != nil {
		return err
	}

	if !wrapped {
		// 未包装时存副本，避免调用方后续修改切片
		cp := make([]byte, len(value))
		copy(cp, value)
		encoded = cp
	}

	m.data.Store(key, encoded)

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

// Exists 检查键是否存在且未过期.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	value, ok := m.data.Load(key)
	if !ok {
		return false, nil
	}

	raw, _ := value.([]byte)

	_, expired, _, err := decodeWithTTL(raw, time.Now())
	if err != nil {
		return false, err
	}

	if expired {
		m.data.Delete(key)
		return false, nil
	}

	return true, nil
}

// Keys 列出有效键；pattern 仅做精确匹配，空串表示全部.
func (m *MemoryKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string

	now := time.Now()

	m.data.Range(func(key, value any) bool {
		k, ok := key.(string)
		if !ok {
			return true
		}

		if pattern != "" && k != pattern {
			return true
		}

		if raw, ok := value.([]byte); ok {
			if _, expired, _, err := decodeWithTTL(raw, now); err == nil && expired {
				m.data.Delete(k)
				return true
			}
		}

		keys = append(keys, k)

		return true
	})

	return keys, nil
}

// Close 内存实现无需释放.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
