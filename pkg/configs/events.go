package configs

import "github.com/spf13/viper"

// EventsConfig 控制生命周期事件发布的开关，包含全局与分主题开关.
type EventsConfig struct {
	Enabled bool               `mapstructure:"enabled"` // 总开关
	File    FileEventsConfig   `mapstructure:"file"`
	Folder  FolderEventsConfig `mapstructure:"folder"`
}

// FileEventsConfig 文件领域的事件开关.
type FileEventsConfig struct {
	Stored  bool `mapstructure:"stored"`
	Updated bool `mapstructure:"updated"`
	Deleted bool `mapstructure:"deleted"`
	Moved   bool `mapstructure:"moved"`
}

// FolderEventsConfig 文件夹领域的事件开关.
type FolderEventsConfig struct {
	Created bool `mapstructure:"created"`
	Deleted bool `mapstructure:"deleted"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 文件事件：默认开启最小必要集
	v.SetDefault("events.file.stored", true)
	v.SetDefault("events.file.deleted", true)

	// 可选事件：默认关闭，按需开启
	v.SetDefault("events.file.updated", false)
	v.SetDefault("events.file.moved", false)

	v.SetDefault("events.folder.created", false)
	v.SetDefault("events.folder.deleted", false)
}
