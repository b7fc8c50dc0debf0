package kv_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/yeisme/mediacabinet/pkg/configs"
	"github.com/yeisme/mediacabinet/pkg/internal/storage/kv"
)

func newMemory(t *testing.T) kv.KVStore {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func newGroupcache(t *testing.T) kv.KVStore {
	t.Helper()

	cfg := &configs.GroupcacheKVConfig{
		Name:       fmt.Sprintf("test-%s-%d", t.Name(), time.Now().UnixNano()),
		CacheBytes: 8 * 1024 * 1024,
	}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeGroupcache, cfg)
	if err != nil {
		t.Fatalf("create groupcache kv: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return store
}

// TestUnknownType 测试未注册的 KV 类型返回错误.
func TestUnknownType(t *testing.T) {
	if _, err := kv.NewKVStore(context.Background(), kv.KVType("etcd"), nil); err == nil {
		t.Fatal("expected error for unregistered kv type")
	}
}

// TestMemoryRoundTrip 测试内存后端的基本读写删.
func TestMemoryRoundTrip(t *testing.T) {
	store := newMemory(t)
	ctx := context.Background()

	payload := []byte(`{"version":"01J3ZK"}`)
	if err := store.Set(ctx, "mc-list-version", payload, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "mc-list-version")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if !bytes.Equal(got, payload) {
		t.Errorf("value mismatch: %q", got)
	}

	ok, err := store.Exists(ctx, "mc-list-version")
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}

	if err := store.Delete(ctx, "mc-list-version"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := store.Get(ctx, "mc-list-version"); err == nil {
		t.Error("expected miss after delete")
	}
}

// TestMemoryValueIsolated 测试写入后修改原切片不影响存储的值.
func TestMemoryValueIsolated(t *testing.T) {
	store := newMemory(t)
	ctx := context.Background()

	payload := []byte("original")
	if err := store.Set(ctx, "iso", payload, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	payload[0] = 'X'

	got, err := store.Get(ctx, "iso")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if string(got) != "original" {
		t.Errorf("stored value mutated: %q", got)
	}
}

// TestMemoryTTLExpiry 测试带 TTL 的键过期后按未命中处理.
func TestMemoryTTLExpiry(t *testing.T) {
	store := newMemory(t)
	ctx := context.Background()

	if err := store.Set(ctx, "short-lived", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// TTL 包装以秒为粒度，跨过一个整秒保证判定为过期
	time.Sleep(1100 * time.Millisecond)

	if _, err := store.Get(ctx, "short-lived"); err == nil {
		t.Error("expected expiry miss")
	}

	ok, err := store.Exists(ctx, "short-lived")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}

	if ok {
		t.Error("expired key should not exist")
	}
}

// TestMemoryKeys 测试 Keys 列举与精确匹配过滤.
func TestMemoryKeys(t *testing.T) {
	store := newMemory(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	all, err := store.Keys(ctx, "")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}

	if len(all) != 3 {
		t.Errorf("len(keys) = %d, want 3", len(all))
	}

	only, err := store.Keys(ctx, "b")
	if err != nil {
		t.Fatalf("Keys(b): %v", err)
	}

	if len(only) != 1 || only[0] != "b" {
		t.Errorf("filtered keys = %v, want [b]", only)
	}
}

// TestGroupcacheRoundTrip 测试 groupcache 后端读写经过缓存组仍一致.
func TestGroupcacheRoundTrip(t *testing.T) {
	store := newGroupcache(t)
	ctx := context.Background()

	payload := []byte("cached-list")
	if err := store.Set(ctx, "mc-list-folder-5", payload, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "mc-list-folder-5")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if !bytes.Equal(got, payload) {
		t.Errorf("value mismatch: %q", got)
	}

	if _, err := store.Get(ctx, "never-set"); err == nil {
		t.Error("expected miss for unknown key")
	}
}

func BenchmarkMemoryKV(b *testing.B) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		b.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	payload := bytes.Repeat([]byte("m"), 1024)

	b.ReportAllocs()

	for i := 0; b.Loop(); i++ {
		key := fmt.Sprintf("bench-%d", i)
		if err := store.Set(ctx, key, payload, 0); err != nil {
			b.Fatalf("set: %v", err)
		}

		if _, err := store.Get(ctx, key); err != nil {
			b.Fatalf("get: %v", err)
		}

		if err := store.Delete(ctx, key); err != nil {
			b.Fatalf("delete: %v", err)
		}
	}
}
