package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GameLens/internal/schema"
	"gorm.io/gorm"
)

// GameRepository 游戏目录仓储
type GameRepository struct {
	db *gorm.DB
}

// NewGameRepository 创建游戏目录仓储
func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

// Create 创建游戏
func (r *GameRepository) Create(ctx context.Context, game *schema.Game) error {
	if err := r.db.WithContext(ctx).Create(game).Error; err != nil {
		return fmt.Errorf("写入游戏失败: %w", err)
	}
	return nil
}

// GetByID 按 ID 获取游戏；不存在时返回 (nil, nil)
func (r *GameRepository) GetByID(ctx context.Context, id int64) (*schema.Game, error) {
	var game schema.Game
	err := r.db.WithContext(ctx).First(&game, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询游戏失败: %w", err)
	}
	return &game, nil
}

// GetByIDs 批量获取游戏，返回 ID → Game 映射；缺失的 ID 不在结果中
func (r *GameRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]schema.Game, error) {
	result := make(map[int64]schema.Game, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var games []schema.Game
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&games).Error; err != nil {
		return nil, fmt.Errorf("批量查询游戏失败: %w", err)
	}

	for _, g := range games {
		result[g.ID] = g
	}
	return result, nil
}

// List 获取游戏列表，按 ID 升序
func (r *GameRepository) List(ctx context.Context, limit, offset int) ([]schema.Game, error) {
	var games []schema.Game
	query := r.db.WithContext(ctx).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&games).Error; err != nil {
		return nil, fmt.Errorf("查询游戏列表失败: %w", err)
	}

	return games, nil
}

// Count 统计游戏总数
func (r *GameRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&schema.Game{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计游戏失败: %w", err)
	}
	return count, nil
}
