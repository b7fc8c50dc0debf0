package kv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/mediacabinet/pkg/configs"
)

// GroupcacheKV 基于 groupcache 的 KV 实现，默认后端.
// groupcache 本身只读不写，本地以受锁 map 作为权威存储，
// 读路径经过缓存组以获得跨节点的热点分摊.
type GroupcacheKV struct {
	group *groupcache.Group
	pool  *groupcache.HTTPPool

	mu   sync.RWMutex
	data map[string][]byte
}

// localGetter 缓存未命中时从本地权威存储回源.
type localGetter struct {
	kv *GroupcacheKV
}

func (g *localGetter) Get(ctx context.Context, key string, dest groupcache.Sink) error {
	g.kv.mu.RLock()
	value, ok := g.kv.data[key]
	g.kv.mu.RUnlock()

	if !ok {
		return fmt.Errorf("key not found: %s", key)
	}

	if err := dest.SetBytes(value); err != nil {
		return fmt.Errorf("sink set bytes: %w", err)
	}

	return nil
}

// NewGroupcacheKV 创建 groupcache KV；配置了 peers 时同时建立 HTTP 池.
func NewGroupcacheKV(ctx context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.GroupcacheKVConfig)
	if !ok {
		return nil, fmt.Errorf("invalid groupcache config")
	}

	kv := &GroupcacheKV{data: make(map[string][]byte)}
	kv.group = groupcache.NewGroup(cfg.Name, cfg.CacheBytes, &localGetter{kv: kv})

	if len(cfg.Peers) > 0 {
		kv.pool = groupcache.NewHTTPPoolOpts(cfg.Self, &groupcache.HTTPPoolOptions{})
		kv.pool.Set(cfg.Peers...)
	}

	return kv, nil
}

// Get 经缓存组读取，过期条目从权威存储删除后按未命中处理.
// groupcache 对已缓存的键可能返回旧值，依赖 TTL 包装在读侧判定过期.
func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	var raw []byte

	if err := g.group.Get(ctx, key, groupcache.AllocatingByteSliceSink(&raw)); err != nil {
		return nil, fmt.Errorf("groupcache get: %w", err)
	}

	val, expired, _, err := decodeWithTTL(raw, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		g.mu.Lock()
		delete(g.data, key)
		g.mu.Unlock()

		return nil, fmt.Errorf("key not found: %s", key)
	}

	out := make([]byte, len(val))
	copy(out, val)

	return out, nil
}

// Set 写入权威存储，ttl>0 时包装过期时间.
func (g *GroupcacheKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, wrapped, err := encodeWithTTL(value, ttl)
	if err != nil {
		return err
	}

	if !wrapped {
		cp := make([]byte, len(value))
		copy(cp, value)
		encoded = cp
	}

	g.mu.Lock()
	g.data[key] = encoded
	g.mu.Unlock()

	return nil
}

// Delete 从权威存储删除键；缓存组内的副本等待自然淘汰.
func (g *GroupcacheKV) Delete(ctx context.Context, key string) error {
	g.mu.Lock()
	delete(g.data, key)
	g.mu.Unlock()

	return nil
}

// Exists 检查权威存储中键是否存在且未过期.
func (g *GroupcacheKV) Exists(ctx context.Context, key string) (bool, error) {
	g.mu.RLock()
	raw, ok := g.data[key]
	g.mu.RUnlock()

	if !ok {
		return false, nil
	}

	_, expired, _, err := decodeWithTTL(raw, time.Now())
	if err != nil {
		return false, err
	}

	if expired {
		g.mu.Lock()
		delete(g.data, key)
		g.mu.Unlock()

		return false, nil
	}

	return true, nil
}

// Keys 列出权威存储中的有效键；pattern 仅做精确匹配，空串表示全部.
func (g *GroupcacheKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	now := time.Now()

	g.mu.RLock()
	defer g.mu.RUnlock()

	keys := make([]string, 0, len(g.data))

	for key, raw := range g.data {
		if pattern != "" && key != pattern {
			continue
		}

		if _, expired, _, err := decodeWithTTL(raw, now); err == nil && expired {
			continue
		}

		keys = append(keys, key)
	}

	return keys, nil
}

// Close groupcache 没有显式关闭.
func (g *GroupcacheKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeGroupcache, NewGroupcacheKV)
}
