package service

import (
	"math"

	"github.com/yuqie6/GameLens/internal/schema"
)

// 五个相似度因子的固定权重。缺失因子时从分子分母同时剔除，
// 归一化除以实际生效的权重和而不是固定总和，避免缺字段拉低分数。
const (
	simWeightPrice     = 0.3
	simWeightYear      = 0.2
	simWeightGenre     = 0.3
	simWeightPublisher = 0.1
	simWeightPlatform  = 0.1
)

// Similarity 计算两款游戏的加权相似度，结果在 [0,1]。
// 对称：Similarity(a,b) == Similarity(b,a)；全因子缺失时返回 0。
func Similarity(a, b *schema.Game) float64 {
	if a == nil || b == nil {
		return 0
	}

	var num, den float64

	// 价格：1 − |p1−p2|/max(p1,p2)，下限 0；价格 ≤0 视为缺失
	if a.Price > 0 && b.Price > 0 {
		num += simWeightPrice * priceSimilarity(a.Price, b.Price)
		den += simWeightPrice
	}

	// 发行年份：10 年内线性衰减；无效年份视为缺失
	y1, y2 := a.ReleaseYear(), b.ReleaseYear()
	if y1 > 0 && y2 > 0 {
		num += simWeightYear * yearSimilarity(y1, y2)
		den += simWeightYear
	}

	// 流派重合度
	if len(a.Genres) > 0 && len(b.Genres) > 0 {
		num += simWeightGenre * overlapRatio(a.Genres, b.Genres)
		den += simWeightGenre
	}

	// 发行商精确匹配
	if a.Publisher != "" && b.Publisher != "" {
		if a.Publisher == b.Publisher {
			num += simWeightPublisher
		}
		den += simWeightPublisher
	}

	// 平台重合度
	if len(a.Platforms) > 0 && len(b.Platforms) > 0 {
		num += simWeightPlatform * overlapRatio(a.Platforms, b.Platforms)
		den += simWeightPlatform
	}

	if den == 0 {
		return 0
	}
	return num / den
}

// priceSimilarity 价格相似度；调用方保证 p1、p2 均为正
func priceSimilarity(p1, p2 float64) float64 {
	maxPrice := math.Max(p1, p2)
	sim := 1 - math.Abs(p1-p2)/maxPrice
	if sim < 0 {
		return 0
	}
	return sim
}

// yearSimilarity 年份相似度：相差 10 年及以上为 0
func yearSimilarity(y1, y2 int) float64 {
	diff := math.Abs(float64(y1 - y2))
	sim := 1 - diff/10
	if sim < 0 {
		return 0
	}
	return sim
}

// overlapRatio 集合重合度：|交集| / max(|a|, |b|, 1)
func overlapRatio(a, b []string) float64 {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}

	overlap := 0
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := set[s]; ok {
			overlap++
		}
	}

	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	if denom < 1 {
		denom = 1
	}
	return float64(overlap) / float64(denom)
}
