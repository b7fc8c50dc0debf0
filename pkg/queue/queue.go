// Package queue 定义媒体库的生命周期事件：主题、负载与消息信封.
//
// 发布/订阅把"保存、移动、删除"与下游消费（缩略图、索引、审计）解耦.
// 信封为 JSON（bytedance/sonic 编解码），结构如下：
//
//	{
//	  "header": {
//	    "topic": "mc.file.stored",
//	    "trace_id": "optional-trace-id",
//	    "producer": "mediacabinet",
//	    "occurred_at": "2026-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { ... 取决于具体主题 ... }
//	}
//
// 发布走 events.go 的业务封装：
//
//	err := queue.PublishFileStored(client.Publisher(), payload,
//	  queue.WithProducer("mediacabinet"))
//
// 订阅端用 ParseWatermillMessage 解出泛型负载：
//
//	env, _ := queue.ParseWatermillMessage[queue.FileStoredPayload](m)
//
// occurred_at 为 UTC RFC3339；version 供后向兼容，消费者应忽略未知字段.
package queue

import (
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

// PayloadVersionV1 当前信封版本.
const PayloadVersionV1 = "v1"

// HeaderOption 修饰事件头的可选项.
type HeaderOption func(*EventHeader)

// WithTraceID 把追踪 ID 写入事件头.
func WithTraceID(id string) HeaderOption { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 标记事件的生产方.
func WithProducer(p string) HeaderOption { return func(h *EventHeader) { h.Producer = p } }

// NewEventHeader 构造事件头，时间取当前 UTC.
func NewEventHeader(topic string, opts ...HeaderOption) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
	}

	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// Encode 把信封序列化为 JSON.
func Encode[T any](msg Message[T]) ([]byte, error) {
	return sonic.Marshal(msg)
}

// Decode 从 JSON 还原信封.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]

	err := sonic.Unmarshal(b, &m)

	return m, err
}

// NewWatermillMessage 把负载装进信封并包成 watermill 消息.
// 头部字段同时写入 Metadata，中间件层无需解包即可路由与追踪.
func NewWatermillMessage[T any](topic string, payload T, opts ...HeaderOption) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)

	data, err := Encode(Message[T]{Header: header, Payload: payload})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)

	meta := map[string]string{
		"topic":       topic,
		"trace_id":    header.TraceID,
		"producer":    header.Producer,
		"occurred_at": header.OccurredAt.Format(time.RFC3339Nano),
		"version":     header.Version,
	}
	for k, v := range meta {
		if v != "" {
			msg.Metadata.Set(k, v)
		}
	}

	return msg, nil
}

// ParseWatermillMessage 从 watermill 消息解出泛型信封.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
