package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	AI      AIConfig      `mapstructure:"ai"`
	Scoring ScoringConfig `mapstructure:"scoring"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath     string `mapstructure:"db_path"`
	VectorPath string `mapstructure:"vector_path"` // chromem 向量库目录
}

// AIConfig AI 配置
type AIConfig struct {
	Recommender RecommenderConfig `mapstructure:"recommender"`
}

// RecommenderConfig 外部推荐服务配置
type RecommenderConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// ScoringConfig 打分配置
type ScoringConfig struct {
	WindowDays               int  `mapstructure:"window_days"`                // 行为分析滑动窗口天数
	DynamicMultiplierDefault bool `mapstructure:"dynamic_multiplier_default"` // system_config 缺行时的开关默认值
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认查找路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("GAMELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理环境变量占位符
	cfg.AI.Recommender.APIKey = expandEnv(cfg.AI.Recommender.APIKey)

	// 处理相对路径
	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	cfg.Storage.VectorPath = resolvePath(cfg.Storage.VectorPath)

	return &cfg, nil
}

// Default 默认配置（未加载配置文件时的兜底）
func Default() *Config {
	cfg, _ := Load("")
	return cfg
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "gamelens")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")

	// Server
	v.SetDefault("server.listen_addr", "127.0.0.1:8480")

	// Storage
	v.SetDefault("storage.db_path", "./data/gamelens.db")
	v.SetDefault("storage.vector_path", "./data/vectors")

	// AI
	v.SetDefault("ai.recommender.base_url", "")
	v.SetDefault("ai.recommender.timeout_sec", 20)
	v.SetDefault("ai.recommender.max_retries", 2)

	// Scoring
	v.SetDefault("scoring.window_days", 7)
	v.SetDefault("scoring.dynamic_multiplier_default", false)
}

// expandEnv 展开环境变量占位符 ${VAR}
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return s
}

// resolvePath 解析相对路径为绝对路径
func resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	// 获取可执行文件目录
	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

// SetupLogger 根据配置设置日志级别
func SetupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
