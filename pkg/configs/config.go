// Package configs 管理应用程序配置，包括数据库、对象存储、消息队列和媒体库
// 领域设置. configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	import "path/to/configs"
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing DB config:
//
//	config := configs.GetConfig()
//	dbConfig := config.DB
//	dsn := dbConfig.GetDSN()
//	fmt.Println("DSN:", dsn)
//
// Example accessing Library config:
//
//	config := configs.GetConfig()
//	lib := config.Library
//	fmt.Println("key prefix:", lib.KeyPrefix)
package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	// AppName 应用名称.
	AppName = "mediacabinet"
	// AppVersion 应用版本.
	AppVersion = "0.1.0"
)

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		DB             DBConfig             `mapstructure:"db"`              // DBConfig 数据库配置
		S3             S3Config             `mapstructure:"s3"`              // S3Config 对象存储配置
		MQ             MQConfig             `mapstructure:"mq"`              // MQConfig 消息队列配置
		KV             KVConfig             `mapstructure:"kv"`              // KVConfig 键值缓存配置
		Server         ServerConfig         `mapstructure:"server"`          // ServerConfig 服务器端口、超时等
		Log            LogConfig            `mapstructure:"log"`             // LogConfig 日志相关配置
		Library        LibraryConfig        `mapstructure:"library"`         // LibraryConfig 媒体库领域配置
		Events         EventsConfig         `mapstructure:"events"`          // EventsConfig 生命周期事件开关
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // MetricsConfig 指标配置
		Tracing        TracingConfig        `mapstructure:"tracing"`         // TracingConfig 追踪配置
		Auth           AuthConfig           `mapstructure:"auth"`            // AuthConfig 认证配置
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // RateLimitConfig 限流配置
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // CircuitBreakerConfig 熔断配置
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
func InitConfig(path string) error {
	appViper = viper.New()
	// 设置默认值
	setAllDefaults(appViper)

	// path 可以是文件，也可以是包含 config.<ext> 的目录
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		appViper.SetConfigFile(path)
	} else {
		appViper.SetConfigName("config")
		appViper.AddConfigPath(path)
		appViper.AddConfigPath(path + "/configs")

		for _, ext := range []string{"yaml", "yml", "json", "toml", "env", "dotenv"} {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				appViper.SetConfigFile(cfg)
				break
			}
		}
	}

	appViper.AutomaticEnv()
	appViper.SetEnvPrefix("MEDIACABINET")

	// 读取配置
	if err := appViper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	// 解析到全局配置
	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	reloadConfigs(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// defaulter 所有配置段都实现 setDefaults.
type defaulter interface {
	setDefaults(v *viper.Viper)
}

// setAllDefaults 注册所有配置段的默认值.
func setAllDefaults(v *viper.Viper) {
	sections := []defaulter{
		&ServerConfig{},
		&DBConfig{},
		&S3Config{},
		&MQConfig{},
		&KVConfig{},
		&LogConfig{},
		&LibraryConfig{},
		&EventsConfig{},
		&MetricsConfig{},
		&TracingConfig{},
		&AuthConfig{},
		&RateLimitConfig{},
		&CircuitBreakerConfig{},
	}

	for _, s := range sections {
		s.setDefaults(v)
	}
}

// reloadConfigs 开启配置文件热重载，重载失败时保留旧配置.
func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("config file changed, reloading:", e.Name)

		if err := v.Unmarshal(&globalConfig); err != nil {
			fmt.Printf("reload config failed: %v\n", err)
		}
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

func GetViper() *viper.Viper {
	return appViper
}
