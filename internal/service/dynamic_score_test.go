package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yuqie6/GameLens/internal/schema"
)

func newTestCalculator(interactions *fakeInteractionRepo, games *fakeGameRepo, configs *fakeConfigRepo) *DynamicScoreCalculator {
	c := NewDynamicScoreCalculator(interactions, games, configs, false, 7)
	c.SetClock(func() time.Time { return testClock })
	return c
}

func enabledConfig() *fakeConfigRepo {
	return &fakeConfigRepo{values: map[string]string{
		schema.KeyDynamicMultiplierEnabled: "true",
	}}
}

// 重交互落在相似游戏上：like 相似动作游戏 + view 不相似解谜游戏，乘数触顶 1.5
func multiplierFixture() (*fakeInteractionRepo, *fakeGameRepo, *schema.Game) {
	games := &fakeGameRepo{games: map[int64]schema.Game{
		1: {ID: 1, Price: 20, ReleaseDate: "2023-04-12", Publisher: "Nebula Works", Genres: schema.JSONArray{"action"}, Platforms: schema.JSONArray{"pc"}},
		3: {ID: 3, Price: 5, ReleaseDate: "2010-06-20", Publisher: "Moss House", Genres: schema.JSONArray{"puzzle"}, Platforms: schema.JSONArray{"switch"}},
	}}
	interactions := &fakeInteractionRepo{events: []schema.Interaction{
		{UserID: 1, GameID: 1, Type: schema.InteractionLike, Timestamp: testClock.Add(-2 * time.Hour).UnixMilli()},
		{UserID: 1, GameID: 3, Type: schema.InteractionView, Timestamp: testClock.Add(-1 * time.Hour).UnixMilli()},
	}}
	candidate := &schema.Game{
		ID: 9, Price: 21, ReleaseDate: "2023-11-05", Publisher: "Nebula Works",
		Genres: schema.JSONArray{"action"}, Platforms: schema.JSONArray{"pc"},
	}
	return interactions, games, candidate
}

func TestAdjustDisabledReturnsBase(t *testing.T) {
	interactions, games, candidate := multiplierFixture()
	calc := newTestCalculator(interactions, games, &fakeConfigRepo{values: map[string]string{
		schema.KeyDynamicMultiplierEnabled: "false",
	}})

	if got := calc.Adjust(context.Background(), 1, candidate, 10); got != 10 {
		t.Errorf("Adjust with flag off=%v, want 10", got)
	}
}

func TestAdjustDefaultWhenConfigMissing(t *testing.T) {
	interactions, games, candidate := multiplierFixture()
	// 无配置行且默认关闭：原样返回
	calc := newTestCalculator(interactions, games, &fakeConfigRepo{})

	if got := calc.Adjust(context.Background(), 1, candidate, 10); got != 10 {
		t.Errorf("Adjust with missing config=%v, want 10", got)
	}
}

func TestAdjustEmptyWindowReturnsBase(t *testing.T) {
	_, games, candidate := multiplierFixture()
	calc := newTestCalculator(&fakeInteractionRepo{}, games, enabledConfig())

	if got := calc.Adjust(context.Background(), 1, candidate, 10); got != 10 {
		t.Errorf("Adjust with empty window=%v, want 10", got)
	}
}

func TestAdjustRepoFailureReturnsBase(t *testing.T) {
	_, games, candidate := multiplierFixture()
	calc := newTestCalculator(&fakeInteractionRepo{err: errors.New("db locked")}, games, enabledConfig())

	if got := calc.Adjust(context.Background(), 1, candidate, 10); got != 10 {
		t.Errorf("Adjust with repo failure=%v, want 10", got)
	}
}

func TestAdjustBoostsSimilarCandidate(t *testing.T) {
	interactions, games, candidate := multiplierFixture()
	calc := newTestCalculator(interactions, games, enabledConfig())

	got := calc.Adjust(context.Background(), 1, candidate, 10)
	// like(5.0) 几乎全部落在高相似游戏上，加权交互分远超均值基线，乘数触顶
	if got != 10*MaxMultiplier {
		t.Errorf("Adjust=%v, want %v", got, 10*MaxMultiplier)
	}
}

func TestAdjustSuppressesDissimilarCandidate(t *testing.T) {
	interactions, games, _ := multiplierFixture()
	calc := newTestCalculator(interactions, games, enabledConfig())

	// 候选只与被 view(1.0) 的解谜游戏相似：加权交互分低于均值基线
	candidate := &schema.Game{
		ID: 9, Price: 6, ReleaseDate: "2011-03-01", Publisher: "Moss House",
		Genres: schema.JSONArray{"puzzle"}, Platforms: schema.JSONArray{"switch"},
	}
	got := calc.Adjust(context.Background(), 1, candidate, 10)
	if got >= 10 {
		t.Errorf("Adjust=%v, want below base 10", got)
	}
	if got < 10*MinMultiplier {
		t.Errorf("Adjust=%v, below floor %v", got, 10*MinMultiplier)
	}
}

func TestAdjustBounds(t *testing.T) {
	interactions, games, candidate := multiplierFixture()
	calc := newTestCalculator(interactions, games, enabledConfig())
	ctx := context.Background()

	for _, base := range []float64{0.1, 1, 10, 100} {
		got := calc.Adjust(ctx, 1, candidate, base)
		if got < base*MinMultiplier || got > base*MaxMultiplier {
			t.Errorf("Adjust(base=%v)=%v, out of [%v, %v]", base, got, base*MinMultiplier, base*MaxMultiplier)
		}
	}
}

// 三条交互（purchase $20 动作/2023、view $22 动作/2022、wishlist $5 解谜/2010）
// 对 $21 动作/2023 候选：相似度加权后 purchase/view 压过低相似的 wishlist，
// 加权交互分须高于简单均值 (3+1+2)/3=2.0，即乘数 > 1。余量很小，钉死防回归。
func TestAdjustWeightedScenarioAboveBaseline(t *testing.T) {
	games := &fakeGameRepo{games: map[int64]schema.Game{
		1: {ID: 1, Price: 20, ReleaseDate: "2023-04-12", Publisher: "Nebula Works", Genres: schema.JSONArray{"action"}, Platforms: schema.JSONArray{"pc"}},
		2: {ID: 2, Price: 22, ReleaseDate: "2022-09-01", Publisher: "Nebula Works", Genres: schema.JSONArray{"action"}, Platforms: schema.JSONArray{"pc"}},
		3: {ID: 3, Price: 5, ReleaseDate: "2010-06-20", Publisher: "Moss House", Genres: schema.JSONArray{"puzzle"}, Platforms: schema.JSONArray{"switch"}},
	}}
	interactions := &fakeInteractionRepo{events: []schema.Interaction{
		{UserID: 1, GameID: 1, Type: schema.InteractionPurchase, Timestamp: testClock.Add(-3 * time.Hour).UnixMilli()},
		{UserID: 1, GameID: 2, Type: schema.InteractionView, Timestamp: testClock.Add(-2 * time.Hour).UnixMilli()},
		{UserID: 1, GameID: 3, Type: schema.InteractionWishlist, Timestamp: testClock.Add(-1 * time.Hour).UnixMilli()},
	}}
	candidate := &schema.Game{
		ID: 9, Price: 21, ReleaseDate: "2023-11-05", Publisher: "Nebula Works",
		Genres: schema.JSONArray{"action"}, Platforms: schema.JSONArray{"pc"},
	}

	gameMap, _ := games.GetByIDs(context.Background(), []int64{1, 2, 3})
	m, ok := interactionMultiplier(candidate, interactions.events, gameMap)
	if !ok {
		t.Fatal("want ok=true")
	}
	if m <= 1.0 {
		t.Errorf("multiplier=%v, want > 1.0 (weighted score must exceed the 2.0 baseline)", m)
	}
	if m > MaxMultiplier {
		t.Errorf("multiplier=%v, above ceiling %v", m, MaxMultiplier)
	}

	calc := newTestCalculator(interactions, games, enabledConfig())
	got := calc.Adjust(context.Background(), 1, candidate, 10)
	if got <= 10 || got > 10*MaxMultiplier {
		t.Errorf("Adjust=%v, want in (10, %v]", got, 10*MaxMultiplier)
	}
}

func TestInteractionMultiplierZeroSimilarity(t *testing.T) {
	// 交互游戏属性全部缺失：simSum 为零，调用方按基础分处理
	interactions := []schema.Interaction{
		{UserID: 1, GameID: 1, Type: schema.InteractionLike},
	}
	games := map[int64]schema.Game{1: {ID: 1}}
	candidate := &schema.Game{ID: 9, Price: 20, Genres: schema.JSONArray{"action"}}

	if _, ok := interactionMultiplier(candidate, interactions, games); ok {
		t.Error("want ok=false when all similarities are zero")
	}
}

func TestInteractionMultiplierMissingGamesSkipped(t *testing.T) {
	// 部分游戏记录缺失：缺失条目跳过但仍计入均值基线
	interactions := []schema.Interaction{
		{UserID: 1, GameID: 1, Type: schema.InteractionLike},
		{UserID: 1, GameID: 404, Type: schema.InteractionView},
	}
	games := map[int64]schema.Game{
		1: {ID: 1, Price: 20, Genres: schema.JSONArray{"action"}},
	}
	candidate := &schema.Game{ID: 9, Price: 20, Genres: schema.JSONArray{"action"}}

	m, ok := interactionMultiplier(candidate, interactions, games)
	if !ok {
		t.Fatal("want ok=true")
	}
	// interactionScore=5.0，基线=(5+1)/2=3 → 乘数触顶
	if m != MaxMultiplier {
		t.Errorf("multiplier=%v, want %v", m, MaxMultiplier)
	}
}

func TestInteractionWeightUnknownType(t *testing.T) {
	if got := interactionWeight("share"); got != 1.0 {
		t.Errorf("interactionWeight(share)=%v, want 1.0", got)
	}
	if got := interactionWeight(schema.InteractionLike); got != 5.0 {
		t.Errorf("interactionWeight(like)=%v, want 5.0", got)
	}
}
