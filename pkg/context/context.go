// Package context 在请求上下文中传递存储客户端与追踪信息，
// 服务层通过它取到中间件注入的 Manager.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/mediacabinet/pkg/internal/storage"
	dbc "github.com/yeisme/mediacabinet/pkg/internal/storage/db"
	kvc "github.com/yeisme/mediacabinet/pkg/internal/storage/kv"
	mqc "github.com/yeisme/mediacabinet/pkg/internal/storage/mq"
	s3c "github.com/yeisme/mediacabinet/pkg/internal/storage/s3"
)

type managerKey struct{}

type userKey struct{}

// WithUser 把认证中间件解析出的操作者身份注入 context.
func WithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userKey{}, email)
}

// GetUser 取出操作者身份，未注入时返回空串.
func GetUser(ctx context.Context) string {
	if email, ok := ctx.Value(userKey{}).(string); ok {
		return email
	}

	return ""
}

// WithStorageManager 把存储 Manager 注入 context.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, mgr)
}

// GetManager 取出存储 Manager，未注入时返回 nil.
func GetManager(ctx context.Context) *storage.Manager {
	if mgr, ok := ctx.Value(managerKey{}).(*storage.Manager); ok {
		return mgr
	}

	return nil
}

// GetS3Client 取出对象存储客户端.
func GetS3Client(ctx context.Context) *s3c.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetS3Client()
	}

	return nil
}

// GetDBClient 取出数据库客户端.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetDBClient()
	}

	return nil
}

// GetMQClient 取出消息队列客户端.
func GetMQClient(ctx context.Context) *mqc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetMQClient()
	}

	return nil
}

// GetKVClient 取出键值缓存客户端.
func GetKVClient(ctx context.Context) *kvc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetKVClient()
	}

	return nil
}

// WithTraceContext 把当前 span 的 trace_id/span_id 附加到 logger，
// 没有活跃 span 时原样返回.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return logger
	}

	sc := span.SpanContext()

	return logger.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
}
