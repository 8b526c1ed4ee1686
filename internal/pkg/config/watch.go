package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch 监听配置文件变更并回调最新配置（目前用于日志级别热更新）。
// 配置文件不存在时静默不监听。
func Watch(configPath string, onChange func(*Config)) {
	if configPath == "" || onChange == nil {
		return
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		slog.Debug("配置文件不可读，跳过监听", "path", configPath, "error", err)
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("配置文件变更", "event", e.Op.String(), "path", e.Name)
		cfg, err := Load(configPath)
		if err != nil {
			slog.Warn("重新加载配置失败", "error", err)
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
