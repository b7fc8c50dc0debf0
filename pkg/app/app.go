// Package app 提供应用程序的初始化和配置功能.
package app

import (
	contextPkg "context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/mediacabinet/pkg/api"
	"github.com/yeisme/mediacabinet/pkg/cache"
	"github.com/yeisme/mediacabinet/pkg/configs"
	"github.com/yeisme/mediacabinet/pkg/context"
	"github.com/yeisme/mediacabinet/pkg/internal/handle"
	"github.com/yeisme/mediacabinet/pkg/internal/jobs"
	"github.com/yeisme/mediacabinet/pkg/internal/service"
	"github.com/yeisme/mediacabinet/pkg/internal/storage"
	"github.com/yeisme/mediacabinet/pkg/internal/variant"
	"github.com/yeisme/mediacabinet/pkg/log"
	"github.com/yeisme/mediacabinet/pkg/metrics"
	"github.com/yeisme/mediacabinet/pkg/middleware"
	"github.com/yeisme/mediacabinet/pkg/rule"
	"github.com/yeisme/mediacabinet/pkg/scheduler"
	"github.com/yeisme/mediacabinet/pkg/tracing"
)

type App struct {
	Engine *gin.Engine
	config *configs.AppConfig
	sched  *scheduler.Scheduler
}

func NewApp(configPath string) *App {
	ctx := contextPkg.Background()
	engine := gin.New()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	config := configs.GetConfig()

	// 变体清单在启动时登记并校验，配置错误直接拒绝启动
	if p := config.Library.DefaultPPOI; p != "" && !rule.ValidPPOI(p) {
		fmt.Printf("Error: invalid library.default_ppoi %q\n", p)
		os.Exit(1)
	}

	manifest, err := variant.DefaultManifest(config.Library.DefaultPPOI)
	if err != nil {
		fmt.Printf("Error registering variant manifest: %v\n", err)
		os.Exit(1)
	}

	handle.Init(manifest)

	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	// 建表
	mgrCtx := context.WithStorageManager(ctx, manager)
	if err := service.NewCabinetService(mgrCtx, manifest).Migrate(); err != nil {
		fmt.Printf("Error migrating database: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	sched, err := scheduler.NewScheduler()
	if err != nil {
		fmt.Printf("Error initializing scheduler: %v\n", err)
		os.Exit(1)
	}

	if err := jobs.RegisterCronJobs(sched, manager); err != nil {
		fmt.Printf("Error registering cron jobs: %v\n", err)
		os.Exit(1)
	}

	sched.Start()

	engine.Use(
		gin.Recovery(),
		// 追踪要先于访问日志注册，日志才能拿到未结束的 span
		middleware.TracingMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.PrometheusMiddleware(),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.AuthMiddleware(config.Auth),
		middleware.RoleMiddleware(),
		middleware.StorageMiddleware(manager),
		middleware.SchedulerMiddleware(sched),
	)

	// KV 可用时为文件夹下拉项挂接响应缓存，树较大时省去整树重算
	var choicesHandlers []gin.HandlerFunc
	if manager.KV != nil {
		respCache := cache.NewCache(manager.KV)
		choicesHandlers = append(choicesHandlers, middleware.CacheMiddleware(middleware.DefaultCacheConfig(respCache)))
	}

	api.RegisterRoutes(engine, choicesHandlers...)

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return &App{
		Engine: engine,
		config: config,
		sched:  sched,
	}
}

func (a *App) Run() error {
	defer func() {
		if a.sched != nil {
			_ = a.sched.Shutdown()
		}

		_ = tracing.ShutdownTracer(contextPkg.Background())
	}()

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler: a.Engine,
		// 上传走 multipart，读超时同时约束了慢速客户端
		ReadTimeout:  a.config.Server.GetTimeoutDuration(),
		WriteTimeout: a.config.Server.GetTimeoutDuration(),
	}

	return srv.ListenAndServe()
}
