package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/yuqie6/GameLens/internal/schema"
)

func fallbackFixture(t *testing.T) (*VectorFallback, *fakeGameRepo) {
	t.Helper()

	games := &fakeGameRepo{games: map[int64]schema.Game{
		1: {ID: 1, Title: "Star Forge", Price: 20, ReleaseDate: "2023-04-12", Publisher: "Nebula Works", Genres: schema.JSONArray{"action"}, Platforms: schema.JSONArray{"pc"}},
		2: {ID: 2, Title: "Quiet Garden", Price: 5, ReleaseDate: "2010-06-20", Publisher: "Moss House", Genres: schema.JSONArray{"puzzle"}, Platforms: schema.JSONArray{"switch"}},
	}}

	fallback, err := NewVectorFallback(games, nil) // 内存库
	if err != nil {
		t.Fatalf("NewVectorFallback error: %v", err)
	}
	return fallback, games
}

func actionPattern() *schema.BehaviorPattern {
	return &schema.BehaviorPattern{
		UserID: 1,
		Price:  schema.PricePreference{MinPrice: 18, MaxPrice: 22, AvgPrice: 20, Weight: 2.5},
		ReleaseDate: schema.ReleaseDatePreference{
			PreferredYears: []int{2023},
			Weight:         2.5,
		},
		Genre: schema.GenrePreference{
			PreferredGenres: []string{"action"},
			Weights:         map[string]float64{"action": 2.3},
		},
		Publisher: schema.PublisherPreference{PreferredPublishers: []string{"Nebula Works"}, Weight: 2.0},
		Platform:  schema.PlatformPreference{PreferredPlatforms: []string{"pc"}, Weight: 2.0},
	}
}

func TestVectorFallbackIndexAll(t *testing.T) {
	fallback, _ := fallbackFixture(t)

	indexed, err := fallback.IndexAll(context.Background())
	if err != nil {
		t.Fatalf("IndexAll error: %v", err)
	}
	if indexed != 2 {
		t.Errorf("indexed=%d, want 2", indexed)
	}
}

func TestVectorFallbackNilPatternNeutral(t *testing.T) {
	fallback, games := fallbackFixture(t)
	ctx := context.Background()
	if _, err := fallback.IndexAll(ctx); err != nil {
		t.Fatalf("IndexAll error: %v", err)
	}

	candidates := []schema.Game{games.games[1], games.games[2]}
	scores, err := fallback.Score(ctx, nil, candidates)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	for id, s := range scores {
		if s != 0.5 {
			t.Errorf("score[%d]=%v, want neutral 0.5 without pattern", id, s)
		}
	}
}

func TestVectorFallbackPrefersMatchingGame(t *testing.T) {
	fallback, games := fallbackFixture(t)
	ctx := context.Background()
	if _, err := fallback.IndexAll(ctx); err != nil {
		t.Fatalf("IndexAll error: %v", err)
	}

	candidates := []schema.Game{games.games[1], games.games[2]}
	scores, err := fallback.Score(ctx, actionPattern(), candidates)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}

	if scores[1] <= scores[2] {
		t.Errorf("action game score=%v <= puzzle game score=%v, want higher", scores[1], scores[2])
	}
	for id, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("score[%d]=%v out of [0,1]", id, s)
		}
	}
}

func TestVectorFallbackDeterministic(t *testing.T) {
	fallback, games := fallbackFixture(t)
	ctx := context.Background()
	if _, err := fallback.IndexAll(ctx); err != nil {
		t.Fatalf("IndexAll error: %v", err)
	}

	candidates := []schema.Game{games.games[1], games.games[2]}
	first, err := fallback.Score(ctx, actionPattern(), candidates)
	if err != nil {
		t.Fatalf("first Score error: %v", err)
	}
	second, err := fallback.Score(ctx, actionPattern(), candidates)
	if err != nil {
		t.Fatalf("second Score error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("scores differ between runs:\n%v\n%v", first, second)
	}
}

func TestVectorFallbackEmptyIndex(t *testing.T) {
	fallback, games := fallbackFixture(t)

	// 未索引任何游戏：全员中性分而不是报错
	candidates := []schema.Game{games.games[1]}
	scores, err := fallback.Score(context.Background(), actionPattern(), candidates)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if scores[1] != 0.5 {
		t.Errorf("score=%v, want 0.5 on empty index", scores[1])
	}
}
