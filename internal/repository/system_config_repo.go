package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GameLens/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SystemConfigRepository 全局开关仓储
type SystemConfigRepository struct {
	db *gorm.DB
}

// NewSystemConfigRepository 创建仓储
func NewSystemConfigRepository(db *gorm.DB) *SystemConfigRepository {
	return &SystemConfigRepository{db: db}
}

// Get 按键获取配置；不存在时返回 (nil, nil)
func (r *SystemConfigRepository) Get(ctx context.Context, key string) (*schema.SystemConfig, error) {
	var cfg schema.SystemConfig
	err := r.db.WithContext(ctx).Where("config_key = ?", key).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询系统配置失败: %w", err)
	}
	return &cfg, nil
}

// GetBool 按键读取布尔配置；行不存在时返回 defaultValue
func (r *SystemConfigRepository) GetBool(ctx context.Context, key string, defaultValue bool) (bool, error) {
	cfg, err := r.Get(ctx, key)
	if err != nil {
		return defaultValue, err
	}
	if cfg == nil {
		return defaultValue, nil
	}
	return cfg.BoolValue(), nil
}

// Set 写入配置（按 config_key 冲突覆盖）
func (r *SystemConfigRepository) Set(ctx context.Context, key, value, description string) error {
	cfg := schema.SystemConfig{
		ConfigKey:   key,
		ConfigValue: value,
		Description: description,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "config_key"}},
		UpdateAll: true,
	}).Create(&cfg).Error
	if err != nil {
		return fmt.Errorf("写入系统配置失败: %w", err)
	}
	return nil
}

// List 列出全部配置项
func (r *SystemConfigRepository) List(ctx context.Context) ([]schema.SystemConfig, error) {
	var configs []schema.SystemConfig
	if err := r.db.WithContext(ctx).Order("config_key ASC").Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("查询系统配置列表失败: %w", err)
	}
	return configs, nil
}
