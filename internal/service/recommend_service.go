package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/yuqie6/GameLens/internal/eventbus"
	"github.com/yuqie6/GameLens/internal/repository"
	"github.com/yuqie6/GameLens/internal/schema"
)

// 基础分来源标识
const (
	ScoreSourceAI       = "ai"       // 外部推荐服务
	ScoreSourceFallback = "fallback" // 本地向量兜底
	ScoreSourceNeutral  = "neutral"  // 兜底也失败，全员中性分
)

// neutralBaseScore 无任何打分来源时的中性基础分
const neutralBaseScore = 0.5

// maxCandidates 单次推荐的候选池上限
const maxCandidates = 200

// Recommendation 单条推荐结果，带打分过程便于排查
type Recommendation struct {
	Game       schema.Game `json:"game"`
	BaseScore  float64     `json:"base_score"`
	Multiplier float64     `json:"multiplier"`
	FinalScore float64     `json:"final_score"`
}

// RecommendResult 推荐列表
type RecommendResult struct {
	UserID int64            `json:"user_id"`
	Source string           `json:"source"`
	Items  []Recommendation `json:"items"`
}

// RecommendService 推荐编排：候选池 → 基础分（AI 或兜底）→ 动态调整 → 排序。
// 外部服务失败永远降级而不报错——用户最差也能看到未个性化的默认排序。
type RecommendService struct {
	analyzer        *BehaviorAnalyzer
	calculator      *DynamicScoreCalculator
	gameRepo        GameRepository
	interactionRepo InteractionRepository
	baseScorer      BaseScorer // 可为 nil（未配置外部服务）
	fallback        FallbackScorer
	hub             *eventbus.Hub
	windowDays      int
	now             func() time.Time
}

// NewRecommendService 创建推荐服务
func NewRecommendService(
	analyzer *BehaviorAnalyzer,
	calculator *DynamicScoreCalculator,
	gameRepo GameRepository,
	interactionRepo InteractionRepository,
	baseScorer BaseScorer,
	fallback FallbackScorer,
	hub *eventbus.Hub,
	windowDays int,
) *RecommendService {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &RecommendService{
		analyzer:        analyzer,
		calculator:      calculator,
		gameRepo:        gameRepo,
		interactionRepo: interactionRepo,
		baseScorer:      baseScorer,
		fallback:        fallback,
		hub:             hub,
		windowDays:      windowDays,
		now:             time.Now,
	}
}

// Recommend 为用户生成个性化推荐列表
func (s *RecommendService) Recommend(ctx context.Context, userID int64, limit int) (*RecommendResult, error) {
	if limit <= 0 {
		limit = 10
	}

	candidates, err := s.candidatesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &RecommendResult{UserID: userID, Source: ScoreSourceNeutral, Items: []Recommendation{}}, nil
	}

	startMs := repository.WindowStart(s.now(), s.windowDays)
	history, err := s.interactionRepo.GetByUserSince(ctx, userID, startMs)
	if err != nil {
		slog.Warn("读取交互历史失败，跳过个性化", "user_id", userID, "error", err)
		history = nil
	}

	// 重算并缓存画像；失败时 pattern 为 nil，后续按冷启动处理
	pattern, err := s.analyzer.AnalyzeAndCache(ctx, userID, s.windowDays)
	if err != nil {
		slog.Warn("行为分析失败，按无画像处理", "user_id", userID, "error", err)
		pattern = nil
	}
	if pattern != nil {
		s.hub.Publish(eventbus.Event{
			Type: eventbus.TypePatternUpdated,
			Data: map[string]any{"user_id": userID, "total_interactions": pattern.TotalInteractions},
		})
	}

	scores, source := s.baseScores(ctx, userID, pattern, candidates, history)

	items := make([]Recommendation, 0, len(candidates))
	for i := range candidates {
		g := candidates[i]
		base, ok := scores[g.ID]
		if !ok {
			base = neutralBaseScore
		}

		final := s.calculator.Adjust(ctx, userID, &g, base)
		multiplier := 1.0
		if base > 0 {
			multiplier = final / base
		}

		items = append(items, Recommendation{
			Game:       g,
			BaseScore:  base,
			Multiplier: multiplier,
			FinalScore: final,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].FinalScore != items[j].FinalScore {
			return items[i].FinalScore > items[j].FinalScore
		}
		return items[i].Game.ID < items[j].Game.ID
	})
	if len(items) > limit {
		items = items[:limit]
	}

	return &RecommendResult{UserID: userID, Source: source, Items: items}, nil
}

// candidatesFor 构建候选池：目录前 maxCandidates 个，排除已购买游戏
func (s *RecommendService) candidatesFor(ctx context.Context, userID int64) ([]schema.Game, error) {
	games, err := s.gameRepo.List(ctx, maxCandidates, 0)
	if err != nil {
		return nil, err
	}

	purchased, err := s.interactionRepo.GetPurchasedGameIDs(ctx, userID)
	if err != nil {
		slog.Warn("读取购买记录失败，不做排除", "user_id", userID, "error", err)
		return games, nil
	}
	if len(purchased) == 0 {
		return games, nil
	}

	owned := make(map[int64]struct{}, len(purchased))
	for _, id := range purchased {
		owned[id] = struct{}{}
	}

	filtered := games[:0]
	for _, g := range games {
		if _, ok := owned[g.ID]; ok {
			continue
		}
		filtered = append(filtered, g)
	}
	return filtered, nil
}

// baseScores 获取基础分：优先外部 AI 服务，失败降级到本地向量兜底，再失败给中性分
func (s *RecommendService) baseScores(ctx context.Context, userID int64, pattern *schema.BehaviorPattern, candidates []schema.Game, history []schema.Interaction) (map[int64]float64, string) {
	if s.baseScorer != nil && s.baseScorer.IsConfigured() {
		scores, err := s.baseScorer.Scores(ctx, userID, candidates, history)
		if err == nil {
			return scores, ScoreSourceAI
		}
		slog.Warn("外部推荐服务失败，降级到本地兜底", "user_id", userID, "error", err)
	}

	if s.fallback != nil {
		scores, err := s.fallback.Score(ctx, pattern, candidates)
		if err == nil {
			return scores, ScoreSourceFallback
		}
		slog.Warn("本地向量兜底失败，使用中性分", "user_id", userID, "error", err)
	}

	scores := make(map[int64]float64, len(candidates))
	for _, g := range candidates {
		scores[g.ID] = neutralBaseScore
	}
	return scores, ScoreSourceNeutral
}
