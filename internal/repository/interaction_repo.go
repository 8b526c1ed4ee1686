package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuqie6/GameLens/internal/schema"
	"gorm.io/gorm"
)

// InteractionRepository 交互事件仓储
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository 创建交互事件仓储
func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Create 创建单个交互事件
func (r *InteractionRepository) Create(ctx context.Context, event *schema.Interaction) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("写入交互事件失败: %w", err)
	}
	return nil
}

// BatchInsert 批量插入交互事件（事务包裹）
func (r *InteractionRepository) BatchInsert(ctx context.Context, events []schema.Interaction) error {
	if len(events) == 0 {
		return nil
	}

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(events, 100).Error
	})

	if err != nil {
		slog.Error("批量插入交互事件失败", "count", len(events), "error", err)
		return fmt.Errorf("批量插入交互事件失败: %w", err)
	}

	slog.Debug("批量插入交互事件成功", "count", len(events), "duration", time.Since(start))
	return nil
}

// GetByUserSince 查询某用户自 startMs 以来的交互事件，按时间升序
func (r *InteractionRepository) GetByUserSince(ctx context.Context, userID int64, startMs int64) ([]schema.Interaction, error) {
	var events []schema.Interaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ?", userID, startMs).
		Order("timestamp ASC").
		Find(&events).Error

	if err != nil {
		return nil, fmt.Errorf("查询交互事件失败: %w", err)
	}

	return events, nil
}

// GetPurchasedGameIDs 查询某用户购买过的游戏 ID（用于推荐时排除）
func (r *InteractionRepository) GetPurchasedGameIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&schema.Interaction{}).
		Distinct("game_id").
		Where("user_id = ? AND type = ?", userID, schema.InteractionPurchase).
		Pluck("game_id", &ids).Error

	if err != nil {
		return nil, fmt.Errorf("查询购买记录失败: %w", err)
	}

	return ids, nil
}

// CountByUser 统计某用户的交互总数
func (r *InteractionRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&schema.Interaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计交互事件失败: %w", err)
	}
	return count, nil
}

// TypeStat 按类型的交互统计
type TypeStat struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// GetTypeStats 统计窗口内各交互类型的次数
func (r *InteractionRepository) GetTypeStats(ctx context.Context, userID int64, startMs int64) ([]TypeStat, error) {
	var stats []TypeStat
	err := r.db.WithContext(ctx).
		Model(&schema.Interaction{}).
		Select("type, COUNT(*) as count").
		Where("user_id = ? AND timestamp >= ?", userID, startMs).
		Group("type").
		Order("count DESC").
		Scan(&stats).Error

	if err != nil {
		return nil, fmt.Errorf("统计交互类型失败: %w", err)
	}

	return stats, nil
}

// DeleteOld 删除旧交互事件（保留最近 N 天）
func (r *InteractionRepository) DeleteOld(ctx context.Context, retainDays int) (int64, error) {
	cutoffTime := time.Now().AddDate(0, 0, -retainDays).UnixMilli()

	result := r.db.WithContext(ctx).
		Where("timestamp < ?", cutoffTime).
		Delete(&schema.Interaction{})

	if result.Error != nil {
		return 0, fmt.Errorf("删除旧交互事件失败: %w", result.Error)
	}

	slog.Info("清理旧交互事件", "deleted", result.RowsAffected, "retain_days", retainDays)
	return result.RowsAffected, nil
}
