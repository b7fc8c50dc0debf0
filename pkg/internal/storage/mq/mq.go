// Package mq 基于 Watermill 提供统一的消息发布与订阅，生命周期事件由此发出.
// 后端通过工厂注册，内置 NATS（含 JetStream）与 Redis Pub/Sub.
//
// Example:
//
//	client, err := mq.New(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	msg := message.NewMessage(watermill.NewUUID(), payload)
//	err = client.Publish(ctx, "mc.file.stored", msg)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	wmmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/mediacabinet/pkg/configs"
	nlog "github.com/yeisme/mediacabinet/pkg/log"
	appmetrics "github.com/yeisme/mediacabinet/pkg/metrics"
)

// Factory 按配置创建一对 Publisher/Subscriber.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册消息队列后端，由各后端文件的 init 调用.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的后端类型.
func GetRegisteredMQTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	return types
}

// Client 持有底层 Publisher 与 Subscriber.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

// Publish 逐条发布消息到指定主题.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return errors.New("mq publisher not initialized")
	}

	for _, m := range msgs {
		if err := c.publisher.Publish(topic, m); err != nil {
			return fmt.Errorf("publish to %s: %w", topic, err)
		}
	}

	return nil
}

// Publisher 返回底层 Publisher，客户端未初始化时为 nil.
func (c *Client) Publisher() message.Publisher {
	if c == nil {
		return nil
	}

	return c.publisher
}

// Subscribe 订阅主题，消息经由返回的通道交付.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, errors.New("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Close 依次关闭 Publisher 与 Subscriber，返回最后一个错误.
func (c *Client) Close() error {
	var err error

	if c.publisher != nil {
		if e := c.publisher.Close(); e != nil {
			err = e
		}
	}

	if c.subscriber != nil {
		if e := c.subscriber.Close(); e != nil {
			err = e
		}
	}

	return err
}

var (
	mqOnce sync.Once
	mqInst *Client
	mqErr  error
)

// New 初始化消息队列客户端（进程级单例）.
// 指标开启时，Publisher/Subscriber 会被装饰后注册到应用的 Prometheus registry.
func New(ctx context.Context) (*Client, error) {
	mqOnce.Do(func() {
		cfg := configs.GetConfig().MQ

		factory, ok := factories[cfg.Type]
		if !ok {
			mqErr = fmt.Errorf("unsupported mq type: %s", cfg.Type)
			return
		}

		logger := &zerologAdapter{l: nlog.Logger()}

		pub, sub, err := factory(ctx, &cfg, logger)
		if err != nil {
			mqErr = fmt.Errorf("init mq (%s): %w", cfg.Type, err)
			return
		}

		if configs.GetConfig().Metrics.Enabled {
			builder := wmmetrics.NewPrometheusMetricsBuilder(appmetrics.GetRegistry(), "mediacabinet", "mq")

			pub, err = builder.DecoratePublisher(pub)
			if err != nil {
				mqErr = fmt.Errorf("decorate publisher: %w", err)
				return
			}

			sub, err = builder.DecorateSubscriber(sub)
			if err != nil {
				mqErr = fmt.Errorf("decorate subscriber: %w", err)
				return
			}
		}

		mqInst = &Client{publisher: pub, subscriber: sub}

		nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("mq client initialized")
	})

	return mqInst, mqErr
}
