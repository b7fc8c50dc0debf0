// Package metrics 提供 Prometheus 指标注册与暴露.
// 除 HTTP 通用指标外，还定义媒体库自身的业务指标：
// 上传字节数与孤儿对象清理数.
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 注册 pprof 端点到 DefaultServeMux

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/mediacabinet/pkg/configs"
)

var (
	// RequestCounter HTTP 请求计数.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP 请求耗时.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// UploadBytes 按变体槽位统计的上传字节数.
	UploadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediacabinet_upload_bytes_total",
			Help: "Total bytes accepted by file uploads, labeled by variant kind",
		},
		[]string{"kind"},
	)

	// OrphanObjectsRemoved 孤儿清理任务删除的对象数.
	OrphanObjectsRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mediacabinet_orphan_objects_removed_total",
			Help: "Objects removed from storage by the orphan sweep job",
		},
	)

	registry = prometheus.NewRegistry()
)

// InitMetrics 注册收集器，未启用时为空操作.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	registry.MustRegister(RequestCounter, RequestDuration, UploadBytes, OrphanObjectsRemoved)

	return nil
}

// StartMetricsServer 在给定引擎上挂载 /metrics，按配置附带 pprof.
func StartMetricsServer(config configs.MetricsConfig, engine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	// gorm 的 prometheus 插件注册在默认 registry，聚合后一起暴露
	gatherers := prometheus.Gatherers{registry, prometheus.DefaultGatherer}
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})))

	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 返回指标注册表，消息层的装饰指标也注册到这里.
func GetRegistry() *prometheus.Registry {
	return registry
}
