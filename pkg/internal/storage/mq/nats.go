// NATS 工厂：创建可选 JetStream 的 Publisher 与 Subscriber.
// 生命周期事件默认走 JetStream 持久化，消费端掉线期间的
// mc.file.*/mc.folder.* 消息在重连后补投.

package mq

import (
	"context"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/yeisme/mediacabinet/pkg/configs"
)

const (
	natsDrainTimeout   = 30 * time.Second
	natsFlusherTimeout = 10 * time.Second
)

func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

func natsFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	opts := natsOptions(cfg)
	jsCfg := jetStreamConfig(cfg, logger)
	marshaler := &nats.JSONMarshaler{}

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		NatsOptions: opts,
		JetStream:   jsCfg,
		Marshaler:   marshaler,
		URL:         serverURL(cfg),
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		NatsOptions: opts,
		JetStream:   jsCfg,
		Unmarshaler: marshaler,
		URL:         serverURL(cfg),
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.LoadBalance {
		logger.Info("subject prefix load balancing enabled", watermill.LogFields{
			"prefix": cfg.SubjectPrefix,
		})
	}

	return pub, sub, nil
}

// natsOptions 连接选项：重连、心跳与认证.
func natsOptions(cfg *configs.MQConfig) []nc.Option {
	opts := []nc.Option{
		nc.Name(cfg.ClientID),
		nc.MaxReconnects(cfg.MaxReconnects),
		nc.ReconnectWait(time.Duration(cfg.ReconnectWait) * time.Second),
		nc.PingInterval(time.Duration(cfg.PingInterval) * time.Second),
		nc.ReconnectBufSize(cfg.BufferSize),
		nc.DrainTimeout(natsDrainTimeout),
		nc.FlusherTimeout(natsFlusherTimeout),
		nc.RetryOnFailedConnect(true),
	}

	// 认证优先级：JWT > NKey > 用户名密码
	switch {
	case cfg.JWT != "":
		opts = append(opts, nc.UserJWTAndSeed(cfg.JWT, cfg.NKey))
	case cfg.NKey != "":
		opts = append(opts, nc.Nkey(cfg.NKey, nil))
	case cfg.User != "":
		opts = append(opts, nc.UserInfo(cfg.User, cfg.Password))
	}

	return opts
}

// jetStreamConfig 按配置开启 JetStream 及其自动建流、去重与异步确认.
func jetStreamConfig(cfg *configs.MQConfig, logger watermill.LoggerAdapter) nats.JetStreamConfig {
	jsCfg := nats.JetStreamConfig{
		Disabled: !cfg.JetStreamEnabled,
	}

	if !cfg.JetStreamEnabled {
		return jsCfg
	}

	jsCfg.AutoProvision = cfg.JetStreamAutoProvision
	jsCfg.TrackMsgId = cfg.JetStreamTrackMsgID
	jsCfg.AckAsync = cfg.JetStreamAckAsync
	jsCfg.DurablePrefix = cfg.JetStreamDurablePrefix

	logger.Info("jetstream enabled", watermill.LogFields{
		"stream_name":    cfg.StreamName,
		"subject_prefix": cfg.SubjectPrefix,
		"auto_provision": cfg.JetStreamAutoProvision,
		"durable_prefix": cfg.JetStreamDurablePrefix,
	})

	return jsCfg
}

// serverURL 集群 URL 优先，多个地址用逗号拼接.
func serverURL(cfg *configs.MQConfig) string {
	if len(cfg.ClusterURLs) > 0 {
		return strings.Join(cfg.ClusterURLs, ",")
	}

	return cfg.URL
}
