package service

import (
	"context"

	"github.com/yuqie6/GameLens/internal/repository"
	"github.com/yuqie6/GameLens/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）

type InteractionRepository interface {
	Create(ctx context.Context, event *schema.Interaction) error
	GetByUserSince(ctx context.Context, userID int64, startMs int64) ([]schema.Interaction, error)
	GetPurchasedGameIDs(ctx context.Context, userID int64) ([]int64, error)
	GetTypeStats(ctx context.Context, userID int64, startMs int64) ([]repository.TypeStat, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

type GameRepository interface {
	Create(ctx context.Context, game *schema.Game) error
	GetByID(ctx context.Context, id int64) (*schema.Game, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]schema.Game, error)
	List(ctx context.Context, limit, offset int) ([]schema.Game, error)
	Count(ctx context.Context) (int64, error)
}

type PatternRepository interface {
	Upsert(ctx context.Context, pattern *schema.BehaviorPattern) error
	GetByUser(ctx context.Context, userID int64) (*schema.BehaviorPattern, error)
	Delete(ctx context.Context, userID int64) error
}

type SystemConfigRepository interface {
	Get(ctx context.Context, key string) (*schema.SystemConfig, error)
	GetBool(ctx context.Context, key string, defaultValue bool) (bool, error)
	Set(ctx context.Context, key, value, description string) error
	List(ctx context.Context) ([]schema.SystemConfig, error)
}

// BaseScorer 外部基础分来源（AI 推荐服务）；本服务只消费分数，从不自己计算
type BaseScorer interface {
	IsConfigured() bool
	Scores(ctx context.Context, userID int64, candidates []schema.Game, history []schema.Interaction) (map[int64]float64, error)
}

// FallbackScorer 确定性兜底打分（AI 不可用时使用）
type FallbackScorer interface {
	Score(ctx context.Context, pattern *schema.BehaviorPattern, candidates []schema.Game) (map[int64]float64, error)
}
