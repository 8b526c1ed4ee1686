package schema

import (
	"strings"
	"time"
)

// KeyDynamicMultiplierEnabled 动态乘数总开关；每次分数调整前都会读取
const KeyDynamicMultiplierEnabled = "dynamic_multiplier_enabled"

// SystemConfig 全局开关表 - 管理端写入，热路径只读
type SystemConfig struct {
	ConfigKey   string    `gorm:"primaryKey;size:100" json:"config_key"`
	ConfigValue string    `gorm:"size:255" json:"config_value"`
	Description string    `gorm:"size:255" json:"description"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (SystemConfig) TableName() string {
	return "system_configs"
}

// BoolValue 将配置值解析为布尔；仅 true/1/on/yes 为真
func (c *SystemConfig) BoolValue() bool {
	switch strings.ToLower(strings.TrimSpace(c.ConfigValue)) {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}
