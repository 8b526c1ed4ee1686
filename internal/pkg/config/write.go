package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// DefaultConfigPath 默认配置文件位置（可执行文件旁的 config/config.yaml）
func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, "config", "config.yaml"), nil
}

// WriteFile 将配置写回 yaml 文件（首次启动时生成默认配置）
func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
		},
		"server": map[string]any{
			"listen_addr": cfg.Server.ListenAddr,
		},
		"storage": map[string]any{
			"db_path":     cfg.Storage.DBPath,
			"vector_path": cfg.Storage.VectorPath,
		},
		"ai": map[string]any{
			"recommender": map[string]any{
				"base_url":    cfg.AI.Recommender.BaseURL,
				"api_key":     cfg.AI.Recommender.APIKey,
				"timeout_sec": cfg.AI.Recommender.TimeoutSec,
				"max_retries": cfg.AI.Recommender.MaxRetries,
			},
		},
		"scoring": map[string]any{
			"window_days":                cfg.Scoring.WindowDays,
			"dynamic_multiplier_default": cfg.Scoring.DynamicMultiplierDefault,
		},
	}

	b, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
