package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"os"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
	"github.com/yuqie6/GameLens/internal/schema"
)

// 游戏特征向量的维度布局：价格 + 年份 + 三段哈希槽
const (
	genreSlots     = 12
	platformSlots  = 6
	publisherSlots = 6
	vectorDim      = 2 + genreSlots + platformSlots + publisherSlots
)

// VectorFallback 确定性兜底打分器：把游戏属性编码成特征向量存入 chromem 集合，
// AI 服务不可用时用行为画像构造查询向量做近邻打分。不依赖任何外部服务。
type VectorFallback struct {
	db         *chromem.DB
	collection *chromem.Collection
	gameRepo   GameRepository
}

// VectorFallbackConfig 配置
type VectorFallbackConfig struct {
	StoragePath string // 为空时使用内存库（测试用）
}

// NewVectorFallback 创建兜底打分器
func NewVectorFallback(gameRepo GameRepository, cfg *VectorFallbackConfig) (*VectorFallback, error) {
	if cfg == nil {
		cfg = &VectorFallbackConfig{}
	}

	var db *chromem.DB
	if cfg.StoragePath == "" {
		db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(cfg.StoragePath, 0755); err != nil {
			return nil, fmt.Errorf("创建向量存储目录失败: %w", err)
		}
		var err error
		db, err = chromem.NewPersistentDB(cfg.StoragePath, false)
		if err != nil {
			return nil, fmt.Errorf("创建向量数据库失败: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection("games", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 collection 失败: %w", err)
	}

	return &VectorFallback{
		db:         db,
		collection: collection,
		gameRepo:   gameRepo,
	}, nil
}

// IndexGame 将单个游戏的特征向量写入集合（同 ID 覆盖）
func (f *VectorFallback) IndexGame(ctx context.Context, game *schema.Game) error {
	if game == nil {
		return fmt.Errorf("game 不能为空")
	}

	doc := chromem.Document{
		ID:        "game_" + strconv.FormatInt(game.ID, 10),
		Content:   game.Title,
		Embedding: gameVector(game),
		Metadata: map[string]string{
			"game_id": strconv.FormatInt(game.ID, 10),
		},
	}

	if err := f.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("写入游戏向量失败: %w", err)
	}
	return nil
}

// IndexAll 全量索引游戏目录，返回索引数量
func (f *VectorFallback) IndexAll(ctx context.Context) (int, error) {
	games, err := f.gameRepo.List(ctx, 0, 0)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for i := range games {
		if err := f.IndexGame(ctx, &games[i]); err != nil {
			slog.Warn("索引游戏向量失败", "game_id", games[i].ID, "error", err)
			continue
		}
		indexed++
	}

	slog.Info("游戏向量索引完成", "indexed", indexed, "total", len(games))
	return indexed, nil
}

// Score 为候选游戏计算确定性基础分。
// 有画像时按画像查询向量的余弦相似度打分；无画像（冷启动）时全部给中性分 0.5。
func (f *VectorFallback) Score(ctx context.Context, pattern *schema.BehaviorPattern, candidates []schema.Game) (map[int64]float64, error) {
	scores := make(map[int64]float64, len(candidates))
	for _, g := range candidates {
		scores[g.ID] = 0.5
	}
	if pattern == nil || len(candidates) == 0 {
		return scores, nil
	}

	total := f.collection.Count()
	if total == 0 {
		return scores, nil
	}

	results, err := f.collection.QueryEmbedding(ctx, patternVector(pattern), total, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("向量查询失败: %w", err)
	}

	for _, res := range results {
		idStr, ok := res.Metadata["game_id"]
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		if _, wanted := scores[id]; !wanted {
			continue
		}
		// 余弦相似度 [-1,1] 映射到 [0,1]
		scores[id] = clamp((float64(res.Similarity)+1)/2, 0, 1)
	}

	return scores, nil
}

// gameVector 游戏属性 → 单位特征向量
func gameVector(game *schema.Game) []float32 {
	vec := make([]float32, vectorDim)
	vec[0] = float32(priceFeature(game.Price))
	vec[1] = float32(yearFeature(game.ReleaseYear()))

	for _, genre := range game.Genres {
		vec[2+hashSlot(genre, genreSlots)] = 1
	}
	for _, platform := range game.Platforms {
		vec[2+genreSlots+hashSlot(platform, platformSlots)] = 1
	}
	if game.Publisher != "" {
		vec[2+genreSlots+platformSlots+hashSlot(game.Publisher, publisherSlots)] = 1
	}

	return normalize(vec)
}

// patternVector 行为画像 → 查询向量（与 gameVector 同布局）
func patternVector(pattern *schema.BehaviorPattern) []float32 {
	vec := make([]float32, vectorDim)
	vec[0] = float32(priceFeature(pattern.Price.AvgPrice))

	if n := len(pattern.ReleaseDate.PreferredYears); n > 0 {
		sum := 0
		for _, y := range pattern.ReleaseDate.PreferredYears {
			sum += y
		}
		vec[1] = float32(yearFeature(sum / n))
	}

	for genre, weight := range pattern.Genre.Weights {
		vec[2+hashSlot(genre, genreSlots)] += float32(weight)
	}
	for _, platform := range pattern.Platform.PreferredPlatforms {
		vec[2+genreSlots+hashSlot(platform, platformSlots)] += float32(pattern.Platform.Weight)
	}
	for _, publisher := range pattern.Publisher.PreferredPublishers {
		vec[2+genreSlots+platformSlots+hashSlot(publisher, publisherSlots)] += float32(pattern.Publisher.Weight)
	}

	return normalize(vec)
}

// priceFeature 价格归一化：100 元封顶
func priceFeature(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return clamp(price/100, 0, 1)
}

// yearFeature 年份归一化：1990-2040 映射到 [0,1]
func yearFeature(year int) float64 {
	if year <= 0 {
		return 0
	}
	return clamp(float64(year-1990)/50, 0, 1)
}

// hashSlot 字符串稳定哈希到 [0, slots)
func hashSlot(s string, slots int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(slots))
}

// normalize 归一化为单位向量（chromem 按余弦相似度检索）
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
