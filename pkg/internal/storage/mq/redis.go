package mq

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/mediacabinet/pkg/configs"
)

// redisChannelBuffer 订阅通道的缓冲大小.
const redisChannelBuffer = 100

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

// redisFactory 基于 Redis Pub/Sub 创建发布者与订阅者.
// 注意 Pub/Sub 没有持久化，进程离线期间的事件会丢失.
func redisFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter,
) (message.Publisher, message.Subscriber, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	pub := &redisPublisher{client: rdb}
	sub := &redisSubscriber{
		client:  rdb,
		closeCh: make(chan struct{}),
	}

	return pub, sub, nil
}

type redisPublisher struct {
	client *redis.Client
}

// Publish 逐条发布到 Redis 频道，PUBLISH 返回即视为送达.
func (p *redisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if err := p.client.Publish(context.Background(), topic, []byte(msg.Payload)).Err(); err != nil {
			return fmt.Errorf("publish to %s: %w", topic, err)
		}

		msg.Ack()
	}

	return nil
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}

type redisSubscriber struct {
	client  *redis.Client
	mu      sync.Mutex
	subs    []*redis.PubSub
	closed  bool
	closeCh chan struct{}
}

// Subscribe 订阅单个频道，每次调用持有独立的 PubSub 连接.
func (s *redisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("subscriber closed")
	}

	pubsub := s.client.Subscribe(ctx, topic)
	s.subs = append(s.subs, pubsub)

	ch := make(chan *message.Message, redisChannelBuffer)

	go func() {
		defer close(ch)

		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}

			wmMsg := message.NewMessage(watermill.NewUUID(), []byte(msg.Payload))

			select {
			case ch <- wmMsg:
			case <-s.closeCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (s *redisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	close(s.closeCh)

	for _, pubsub := range s.subs {
		_ = pubsub.Close()
	}

	return s.client.Close()
}
