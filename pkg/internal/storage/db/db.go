// Package db 管理媒体库的关系存储连接.
// 方言通过工厂注册，配合构建标签可裁剪掉不需要的驱动.
package db

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormPrometheus "gorm.io/plugin/prometheus"

	"github.com/yeisme/mediacabinet/pkg/configs"
	nlog "github.com/yeisme/mediacabinet/pkg/log"
)

// DialectorFactory 由 DSN 构造 gorm 方言.
type DialectorFactory func(dsn string) gorm.Dialector

var (
	dialectorFactories = map[configs.DBType]DialectorFactory{}
	initMu             sync.Mutex
)

// RegisterDialectorFactory 注册数据库方言工厂，由各驱动文件的 init 调用.
func RegisterDialectorFactory(dbType configs.DBType, factory DialectorFactory) {
	dialectorFactories[dbType] = factory
}

// GetRegisteredDBTypes 返回编译进来的数据库类型.
func GetRegisteredDBTypes() []configs.DBType {
	types := make([]configs.DBType, 0, len(dialectorFactories))
	for dbType := range dialectorFactories {
		types = append(types, dbType)
	}

	return types
}

// Client 包装 gorm DB.
type Client struct {
	*gorm.DB
}

// New 按全局配置建立数据库连接，配置连接池并做一次 Ping.
func New(ctx context.Context) (*Client, error) {
	initMu.Lock()
	defer initMu.Unlock()

	cfg := configs.GetConfig().DB

	dsn := cfg.GetDSN()
	if dsn == "" {
		return nil, fmt.Errorf("empty DSN for database type %s", cfg.Type)
	}

	factory, ok := dialectorFactories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("database type %s not compiled in", cfg.Type)
	}

	gormLogger := logger.New(
		nlog.Logger(),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(factory(dsn), &gorm.Config{
		Logger:               gormLogger,
		PrepareStmt:          true,
		FullSaveAssociations: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	client := &Client{DB: db}

	if configs.GetConfig().Metrics.Enabled {
		if err := client.RegisterGORMMetrics(cfg.Database); err != nil {
			return nil, fmt.Errorf("register gorm metrics: %w", err)
		}
	}

	nlog.Logger().Info().
		Str("type", cfg.GetDBType()).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("database connected")

	return client, nil
}

// GetDB 返回 gorm DB 实例.
func (c *Client) GetDB() *gorm.DB {
	return c.DB
}

// gormMetricsRefreshSeconds gorm prometheus 插件的采样周期.
const gormMetricsRefreshSeconds = 15

// RegisterGORMMetrics 挂载 gorm 的 prometheus 插件，不另起 HTTP 服务.
func (c *Client) RegisterGORMMetrics(dbName string) error {
	plugin := gormPrometheus.New(gormPrometheus.Config{
		DBName:          dbName,
		RefreshInterval: gormMetricsRefreshSeconds,
		StartServer:     false,
	})

	if err := c.Use(plugin); err != nil {
		return fmt.Errorf("gorm prometheus plugin: %w", err)
	}

	return nil
}
