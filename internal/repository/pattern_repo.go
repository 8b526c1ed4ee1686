package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GameLens/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PatternRepository 行为画像缓存仓储
type PatternRepository struct {
	db *gorm.DB
}

// NewPatternRepository 创建仓储
func NewPatternRepository(db *gorm.DB) *PatternRepository {
	return &PatternRepository{db: db}
}

// Upsert 插入或更新（按 user_id 冲突覆盖，后写覆盖先写）
func (r *PatternRepository) Upsert(ctx context.Context, pattern *schema.BehaviorPattern) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(pattern).Error
	if err != nil {
		return fmt.Errorf("写入行为画像失败: %w", err)
	}
	return nil
}

// GetByUser 按用户获取缓存画像；不存在时返回 (nil, nil)
func (r *PatternRepository) GetByUser(ctx context.Context, userID int64) (*schema.BehaviorPattern, error) {
	var pattern schema.BehaviorPattern
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pattern).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询行为画像失败: %w", err)
	}
	return &pattern, nil
}

// Delete 删除某用户的缓存画像（画像可随时重算，删除无损）
func (r *PatternRepository) Delete(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&schema.BehaviorPattern{}).Error
	if err != nil {
		return fmt.Errorf("删除行为画像失败: %w", err)
	}
	return nil
}
