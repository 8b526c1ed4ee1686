package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/yuqie6/GameLens/internal/repository"
	"github.com/yuqie6/GameLens/internal/schema"
)

// DefaultWindowDays 行为分析默认的滑动窗口天数
const DefaultWindowDays = 7

// 偏好公式里的年份锚点：以 2000 年为基准衡量交互年份的“新旧”
const releaseYearAnchor = 2000

// BehaviorAnalyzer 行为分析器：从滑动窗口内的交互事件推导五个维度的偏好画像。
// 纯读取 + 计算，无副作用；画像缓存由 AnalyzeAndCache 单独负责。
type BehaviorAnalyzer struct {
	interactionRepo InteractionRepository
	gameRepo        GameRepository
	patternRepo     PatternRepository
	now             func() time.Time // 可注入，保证测试可复现
}

// NewBehaviorAnalyzer 创建行为分析器
func NewBehaviorAnalyzer(
	interactionRepo InteractionRepository,
	gameRepo GameRepository,
	patternRepo PatternRepository,
) *BehaviorAnalyzer {
	return &BehaviorAnalyzer{
		interactionRepo: interactionRepo,
		gameRepo:        gameRepo,
		patternRepo:     patternRepo,
		now:             time.Now,
	}
}

// SetClock 注入时钟（测试用）
func (a *BehaviorAnalyzer) SetClock(now func() time.Time) {
	a.now = now
}

// Analyze 分析用户最近 windowDays 天的行为，推导偏好画像。
// 窗口内无交互时返回 (nil, nil) —— 冷启动是正常情况，不是错误。
func (a *BehaviorAnalyzer) Analyze(ctx context.Context, userID int64, windowDays int) (*schema.BehaviorPattern, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("user_id 必须为正数")
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	now := a.now()
	startMs := repository.WindowStart(now, windowDays)

	interactions, err := a.interactionRepo.GetByUserSince(ctx, userID, startMs)
	if err != nil {
		return nil, fmt.Errorf("读取交互历史失败: %w", err)
	}
	if len(interactions) == 0 {
		return nil, nil
	}

	games, err := a.gamesFor(ctx, interactions)
	if err != nil {
		return nil, err
	}

	total := len(interactions)
	pattern := &schema.BehaviorPattern{
		UserID:            userID,
		Price:             analyzePrice(interactions, games),
		ReleaseDate:       analyzeReleaseDate(interactions, games, now.Year()),
		Genre:             analyzeGenre(interactions, games, total),
		Publisher:         analyzePublisher(interactions, games, total),
		Platform:          analyzePlatform(interactions, games, total),
		TotalInteractions: total,
		LastAnalyzed:      now.UnixMilli(),
	}

	return pattern, nil
}

// AnalyzeAndCache 分析并回写画像缓存。缓存写入失败只记日志不报错：
// 调用方手里已经拿到新鲜画像，缓存只是复用优化。
func (a *BehaviorAnalyzer) AnalyzeAndCache(ctx context.Context, userID int64, windowDays int) (*schema.BehaviorPattern, error) {
	pattern, err := a.Analyze(ctx, userID, windowDays)
	if err != nil || pattern == nil {
		return pattern, err
	}

	if err := a.patternRepo.Upsert(ctx, pattern); err != nil {
		slog.Warn("写入行为画像缓存失败", "user_id", userID, "error", err)
	}
	return pattern, nil
}

// CachedPattern 读取缓存画像；无缓存时返回 (nil, nil)
func (a *BehaviorAnalyzer) CachedPattern(ctx context.Context, userID int64) (*schema.BehaviorPattern, error) {
	return a.patternRepo.GetByUser(ctx, userID)
}

// gamesFor 取出交互涉及的游戏属性快照
func (a *BehaviorAnalyzer) gamesFor(ctx context.Context, interactions []schema.Interaction) (map[int64]schema.Game, error) {
	ids := make([]int64, 0, len(interactions))
	seen := make(map[int64]struct{}, len(interactions))
	for _, it := range interactions {
		if _, ok := seen[it.GameID]; ok {
			continue
		}
		seen[it.GameID] = struct{}{}
		ids = append(ids, it.GameID)
	}

	games, err := a.gameRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("读取游戏属性失败: %w", err)
	}
	return games, nil
}

// analyzePrice 价格偏好：权重 = clamp(3 − 总体标准差/均值, 1, 3)，价格越集中权重越高
func analyzePrice(interactions []schema.Interaction, games map[int64]schema.Game) schema.PricePreference {
	prices := make([]float64, 0, len(interactions))
	for _, it := range interactions {
		g, ok := games[it.GameID]
		if !ok || g.Price <= 0 {
			continue
		}
		prices = append(prices, g.Price)
	}

	if len(prices) == 0 {
		return schema.PricePreference{Weight: schema.MinPreferenceWeight}
	}

	minPrice, maxPrice := prices[0], prices[0]
	sum := 0.0
	for _, p := range prices {
		if p < minPrice {
			minPrice = p
		}
		if p > maxPrice {
			maxPrice = p
		}
		sum += p
	}
	avg := sum / float64(len(prices))

	// 总体标准差（不是样本标准差）
	variance := 0.0
	for _, p := range prices {
		variance += (p - avg) * (p - avg)
	}
	stddev := math.Sqrt(variance / float64(len(prices)))

	weight := clamp(3.0-stddev/avg, schema.MinPreferenceWeight, schema.MaxPreferenceWeight)

	return schema.PricePreference{
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		AvgPrice: avg,
		Weight:   weight,
	}
}

// analyzeReleaseDate 发行年份偏好：权重随平均交互年份的新旧线性变化
func analyzeReleaseDate(interactions []schema.Interaction, games map[int64]schema.Game, currentYear int) schema.ReleaseDatePreference {
	counts := make(map[int]int)
	sum := 0
	n := 0
	for _, it := range interactions {
		g, ok := games[it.GameID]
		if !ok {
			continue
		}
		year := g.ReleaseYear()
		if year == 0 {
			continue
		}
		counts[year]++
		sum += year
		n++
	}

	if n == 0 {
		return schema.ReleaseDatePreference{Weight: schema.MinPreferenceWeight}
	}

	avgYear := float64(sum) / float64(n)
	weight := schema.MinPreferenceWeight
	if span := float64(currentYear - releaseYearAnchor); span > 0 {
		weight = clamp(1.0+2.0*(avgYear-releaseYearAnchor)/span,
			schema.MinPreferenceWeight, schema.MaxPreferenceWeight)
	}

	return schema.ReleaseDatePreference{
		PreferredYears: topYears(counts, 3),
		Weight:         weight,
	}
}

// analyzeGenre 流派偏好：取前 5 个高频流派，按出现占比单独计权
func analyzeGenre(interactions []schema.Interaction, games map[int64]schema.Game, total int) schema.GenrePreference {
	counts := make(map[string]int)
	for _, it := range interactions {
		g, ok := games[it.GameID]
		if !ok {
			continue
		}
		for _, genre := range g.Genres {
			if genre == "" {
				continue
			}
			counts[genre]++
		}
	}

	top := topKeys(counts, 5)
	if len(top) == 0 {
		return schema.GenrePreference{Weights: map[string]float64{}}
	}

	preferred := make([]string, 0, len(top))
	weights := make(map[string]float64, len(top))
	for _, e := range top {
		preferred = append(preferred, e.Key)
		weights[e.Key] = clamp(1.0+2.0*float64(e.Count)/float64(total),
			schema.MinPreferenceWeight, schema.MaxPreferenceWeight)
	}

	return schema.GenrePreference{
		PreferredGenres: preferred,
		Weights:         weights,
	}
}

// analyzePublisher 发行商偏好：头部发行商的交互占比驱动单一权重
func analyzePublisher(interactions []schema.Interaction, games map[int64]schema.Game, total int) schema.PublisherPreference {
	counts := make(map[string]int)
	for _, it := range interactions {
		g, ok := games[it.GameID]
		if !ok || g.Publisher == "" {
			continue
		}
		counts[g.Publisher]++
	}

	top := topKeys(counts, 3)
	if len(top) == 0 {
		return schema.PublisherPreference{Weight: schema.MinPreferenceWeight}
	}

	preferred := make([]string, 0, len(top))
	for _, e := range top {
		preferred = append(preferred, e.Key)
	}
	weight := clamp(1.0+2.0*float64(top[0].Count)/float64(total),
		schema.MinPreferenceWeight, schema.MaxPreferenceWeight)

	return schema.PublisherPreference{
		PreferredPublishers: preferred,
		Weight:              weight,
	}
}

// analyzePlatform 平台偏好：结构同发行商，平台按列表逐个计数
func analyzePlatform(interactions []schema.Interaction, games map[int64]schema.Game, total int) schema.PlatformPreference {
	counts := make(map[string]int)
	for _, it := range interactions {
		g, ok := games[it.GameID]
		if !ok {
			continue
		}
		for _, platform := range g.Platforms {
			if platform == "" {
				continue
			}
			counts[platform]++
		}
	}

	top := topKeys(counts, 3)
	if len(top) == 0 {
		return schema.PlatformPreference{Weight: schema.MinPreferenceWeight}
	}

	preferred := make([]string, 0, len(top))
	for _, e := range top {
		preferred = append(preferred, e.Key)
	}
	weight := clamp(1.0+2.0*float64(top[0].Count)/float64(total),
		schema.MinPreferenceWeight, schema.MaxPreferenceWeight)

	return schema.PlatformPreference{
		PreferredPlatforms: preferred,
		Weight:             weight,
	}
}
