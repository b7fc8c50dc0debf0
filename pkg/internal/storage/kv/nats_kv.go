package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yeisme/mediacabinet/pkg/configs"
)

// NATSKV 基于 NATS JetStream KeyValue 的 KV 实现.
// JetStream KV 的 TTL 是 bucket 级的，按键 TTL 由 ttl.go 的包装值实现.
type NATSKV struct {
	kv   nats.KeyValue
	conn *nats.Conn
}

// NewNATSKV 连接 NATS 并创建（或复用）配置指定的 bucket.
func NewNATSKV(ctx context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.NATSKVConfig)
	if !ok {
		return nil, fmt.Errorf("invalid NATS KV config")
	}

	var opts []nats.Option
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	kvBucket, err := js.CreateKeyValue(&nats.KeyValueConfig{Bucket: cfg.Bucket})
	if err != nil {
		// bucket 已存在时直接绑定
		kvBucket, err = js.KeyValue(cfg.Bucket)
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("bind kv bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &NATSKV{kv: kvBucket, conn: nc}, nil
}

// Get 读取键值，过期条目惰性删除并按未命中处理.
func (n *NATSKV) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := n.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, fmt.Errorf("key not found: %s", key)
	}

	if err != nil {
		return nil, fmt.Errorf("nats kv get: %w", err)
	}

	val, expired, _, err := decodeWithTTL(entry.Value(), time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = n.kv.Delete(key)
		return nil, fmt.Errorf("key not found: %s", key)
	}

	return val, nil
}

// Set 写入键值，ttl>0 时附带包装过期时间.
func (n *NATSKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, _, err := encodeWithTTL(value, ttl)
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(key, encoded); err != nil {
		return fmt.Errorf("nats kv put: %w", err)
	}

	return nil
}

// Delete 删除键.
func (n *NATSKV) Delete(ctx context.Context, key string) error {
	if err := n.kv.Delete(key); err != nil {
		return fmt.Errorf("nats kv delete: %w", err)
	}

	return nil
}

// Exists 检查键是否存在且未过期.
func (n *NATSKV) Exists(ctx context.Context, key string) (bool, error) {
	entry, err := n.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("nats kv get: %w", err)
	}

	_, expired, _, err := decodeWithTTL(entry.Value(), time.Now())
	if err != nil {
		return false, err
	}

	if expired {
		_ = n.kv.Delete(key)
		return false, nil
	}

	return true, nil
}

// Keys 列出有效键；pattern 仅做精确匹配，空串表示全部.
func (n *NATSKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := n.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("nats kv keys: %w", err)
	}

	result := make([]string, 0, len(keys))

	for _, key := range keys {
		if pattern != "" && key != pattern {
			continue
		}

		if entry, e := n.kv.Get(key); e == nil {
			if _, expired, _, derr := decodeWithTTL(entry.Value(), time.Now()); derr == nil && expired {
				_ = n.kv.Delete(key)
				continue
			}
		}

		result = append(result, key)
	}

	return result, nil
}

// Close 关闭 NATS 连接.
func (n *NATSKV) Close() error {
	n.conn.Close()
	return nil
}

func init() {
	RegisterKVFactory(KVTypeNATS, NewNATSKV)
}
