package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/yuqie6/GameLens/internal/repository"
	"github.com/yuqie6/GameLens/internal/schema"
)

// 动态乘数的边界：个性化最多把基础分缩放到 [0.7, 1.5] 倍，防止放大失控
const (
	MinMultiplier = 0.7
	MaxMultiplier = 1.5
)

// interactionWeights 交互类型权重：行为越重，表达的偏好越强
var interactionWeights = map[string]float64{
	schema.InteractionLike:     5.0,
	schema.InteractionReview:   4.0,
	schema.InteractionPurchase: 3.0,
	schema.InteractionWishlist: 2.0,
	schema.InteractionView:     1.0,
}

// interactionWeight 未知类型按 1.0 处理
func interactionWeight(typ string) float64 {
	if w, ok := interactionWeights[typ]; ok {
		return w
	}
	return 1.0
}

// DynamicScoreCalculator 动态分数计算器：按用户近期交互对基础分做有界缩放。
// 只读不写；所有退化情况（开关关闭、无交互、分母为零、存储故障）都原样返回基础分——
// 个性化永远是可选增强，不是硬依赖。
type DynamicScoreCalculator struct {
	interactionRepo InteractionRepository
	gameRepo        GameRepository
	configRepo      SystemConfigRepository
	defaultEnabled  bool // system_config 缺行时的开关默认值
	windowDays      int
	now             func() time.Time
}

// NewDynamicScoreCalculator 创建计算器
func NewDynamicScoreCalculator(
	interactionRepo InteractionRepository,
	gameRepo GameRepository,
	configRepo SystemConfigRepository,
	defaultEnabled bool,
	windowDays int,
) *DynamicScoreCalculator {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &DynamicScoreCalculator{
		interactionRepo: interactionRepo,
		gameRepo:        gameRepo,
		configRepo:      configRepo,
		defaultEnabled:  defaultEnabled,
		windowDays:      windowDays,
		now:             time.Now,
	}
}

// SetClock 注入时钟（测试用）
func (c *DynamicScoreCalculator) SetClock(now func() time.Time) {
	c.now = now
}

// Adjust 对 (userID, game) 的基础分做动态调整，返回调整后的分数。
// 开关每次调用前都重新读取，管理端切换立即生效。
func (c *DynamicScoreCalculator) Adjust(ctx context.Context, userID int64, game *schema.Game, baseScore float64) float64 {
	enabled, err := c.configRepo.GetBool(ctx, schema.KeyDynamicMultiplierEnabled, c.defaultEnabled)
	if err != nil {
		slog.Warn("读取动态乘数开关失败，按基础分返回", "user_id", userID, "error", err)
		return baseScore
	}
	if !enabled || game == nil {
		return baseScore
	}

	startMs := repository.WindowStart(c.now(), c.windowDays)
	interactions, err := c.interactionRepo.GetByUserSince(ctx, userID, startMs)
	if err != nil {
		slog.Warn("读取交互历史失败，按基础分返回", "user_id", userID, "error", err)
		return baseScore
	}
	if len(interactions) == 0 {
		return baseScore
	}

	ids := make([]int64, 0, len(interactions))
	for _, it := range interactions {
		ids = append(ids, it.GameID)
	}
	games, err := c.gameRepo.GetByIDs(ctx, ids)
	if err != nil {
		slog.Warn("读取游戏属性失败，按基础分返回", "user_id", userID, "error", err)
		return baseScore
	}

	multiplier, ok := interactionMultiplier(game, interactions, games)
	if !ok {
		return baseScore
	}
	return baseScore * multiplier
}

// interactionMultiplier 计算动态乘数，结果在 [MinMultiplier, MaxMultiplier]。
// interactionScore 是以相似度为权的交互类型权重均值；avgInteractionScore 是
// 不加权的均值基线。两者之比围绕 1.0 波动：相似游戏上的重交互推高，反之压低。
// 任一分母为零时返回 (0, false)，调用方按基础分处理。
func interactionMultiplier(candidate *schema.Game, interactions []schema.Interaction, games map[int64]schema.Game) (float64, bool) {
	if len(interactions) == 0 {
		return 0, false
	}

	var simSum, weightedSum, weightSum float64
	for _, it := range interactions {
		w := interactionWeight(it.Type)
		weightSum += w

		g, ok := games[it.GameID]
		if !ok {
			continue
		}
		sim := Similarity(candidate, &g)
		simSum += sim
		weightedSum += sim * w
	}

	if simSum == 0 {
		return 0, false
	}
	interactionScore := weightedSum / simSum

	avgInteractionScore := weightSum / float64(len(interactions))
	if avgInteractionScore == 0 {
		return 0, false
	}

	return clamp(interactionScore/avgInteractionScore, MinMultiplier, MaxMultiplier), true
}
