package configs

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultKeyPrefix        = "cabinet" // 对象键统一前缀
	DefaultMaxUploadSizeMB  = 64        // 单文件上传上限（MB）
	DefaultAllowOverwrite   = true      // 是否允许覆盖保存
	DefaultPPOI             = "0.5x0.5" // 图片主关注点默认值
	DefaultListCacheTTL     = 30        // 列表/搜索缓存 TTL（秒）
	DefaultPresignExpiry    = 900       // 预签名下载链接有效期（秒）
	DefaultOrphanSweepCron  = "0 3 * * *"
	DefaultOrphanSweepBatch = 200 // 每轮扫描的对象数上限
)

// LibraryConfig 媒体库领域配置：对象键布局、上传限制、覆盖开关与孤儿清扫.
type LibraryConfig struct {
	KeyPrefix        string `mapstructure:"key_prefix"         rule:"required"`
	MaxUploadSizeMB  int    `mapstructure:"max_upload_size_mb" rule:"min=1,max=4096"`
	AllowOverwrite   bool   `mapstructure:"allow_overwrite"`
	DefaultPPOI      string `mapstructure:"default_ppoi"`
	ListCacheTTL     int    `mapstructure:"list_cache_ttl"     rule:"min=0,max=3600"`
	PresignExpiry    int    `mapstructure:"presign_expiry"     rule:"min=60,max=86400"`
	OrphanSweepCron  string `mapstructure:"orphan_sweep_cron"`
	OrphanSweepBatch int    `mapstructure:"orphan_sweep_batch" rule:"min=1,max=10000"`
}

// GetKeyPrefix 返回规范化的对象键前缀（不带前后斜杠）.
func (c *LibraryConfig) GetKeyPrefix() string {
	return strings.Trim(c.KeyPrefix, "/")
}

// MaxUploadBytes 返回上传大小上限（字节）.
func (c *LibraryConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}

// setDefaults 设置媒体库配置的默认值.
func (c *LibraryConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("library.key_prefix", DefaultKeyPrefix)
	v.SetDefault("library.max_upload_size_mb", DefaultMaxUploadSizeMB)
	v.SetDefault("library.allow_overwrite", DefaultAllowOverwrite)
	v.SetDefault("library.default_ppoi", DefaultPPOI)
	v.SetDefault("library.list_cache_ttl", DefaultListCacheTTL)
	v.SetDefault("library.presign_expiry", DefaultPresignExpiry)
	v.SetDefault("library.orphan_sweep_cron", DefaultOrphanSweepCron)
	v.SetDefault("library.orphan_sweep_batch", DefaultOrphanSweepBatch)
}
