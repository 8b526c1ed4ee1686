package repository

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/yuqie6/GameLens/internal/schema"
	"github.com/yuqie6/GameLens/internal/testutil"
)

func samplePattern(userID int64) *schema.BehaviorPattern {
	return &schema.BehaviorPattern{
		UserID: userID,
		Price:  schema.PricePreference{MinPrice: 5, MaxPrice: 22, AvgPrice: 15.67, Weight: 2.5},
		ReleaseDate: schema.ReleaseDatePreference{
			PreferredYears: []int{2010, 2022, 2023},
			Weight:         2.1,
		},
		Genre: schema.GenrePreference{
			PreferredGenres: []string{"action", "puzzle"},
			Weights:         map[string]float64{"action": 2.33, "puzzle": 1.67},
		},
		Publisher:         schema.PublisherPreference{PreferredPublishers: []string{"Nebula Works"}, Weight: 2.33},
		Platform:          schema.PlatformPreference{PreferredPlatforms: []string{"pc"}, Weight: 2.33},
		TotalInteractions: 3,
		LastAnalyzed:      1714564800000,
	}
}

func TestPatternRepositoryUpsertRoundTrip(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPatternRepository(db)
	ctx := context.Background()

	want := samplePattern(1)
	if err := repo.Upsert(ctx, want); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	got, err := repo.GetByUser(ctx, 1)
	if err != nil {
		t.Fatalf("GetByUser error: %v", err)
	}
	if got == nil {
		t.Fatal("pattern not found after upsert")
	}

	// JSON 列往返后结构完整
	if math.Abs(got.Price.AvgPrice-want.Price.AvgPrice) > 1e-9 {
		t.Errorf("AvgPrice=%v, want %v", got.Price.AvgPrice, want.Price.AvgPrice)
	}
	if !reflect.DeepEqual(got.ReleaseDate.PreferredYears, want.ReleaseDate.PreferredYears) {
		t.Errorf("PreferredYears=%v, want %v", got.ReleaseDate.PreferredYears, want.ReleaseDate.PreferredYears)
	}
	if !reflect.DeepEqual(got.Genre.Weights, want.Genre.Weights) {
		t.Errorf("Genre.Weights=%v, want %v", got.Genre.Weights, want.Genre.Weights)
	}
	if got.TotalInteractions != 3 {
		t.Errorf("TotalInteractions=%d, want 3", got.TotalInteractions)
	}
}

func TestPatternRepositoryUpsertOverwrites(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPatternRepository(db)
	ctx := context.Background()

	first := samplePattern(1)
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("first Upsert error: %v", err)
	}

	second := samplePattern(1)
	second.TotalInteractions = 7
	second.Genre.PreferredGenres = []string{"strategy"}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert error: %v", err)
	}

	got, err := repo.GetByUser(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("GetByUser err=%v got=%v", err, got)
	}
	if got.TotalInteractions != 7 {
		t.Errorf("TotalInteractions=%d, want 7 (last write wins)", got.TotalInteractions)
	}
	if !reflect.DeepEqual(got.Genre.PreferredGenres, []string{"strategy"}) {
		t.Errorf("PreferredGenres=%v, want [strategy]", got.Genre.PreferredGenres)
	}
}

func TestPatternRepositoryGetMissing(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPatternRepository(db)

	got, err := repo.GetByUser(context.Background(), 404)
	if err != nil {
		t.Fatalf("GetByUser error: %v", err)
	}
	if got != nil {
		t.Errorf("got=%v, want nil for missing user", got)
	}
}

func TestPatternRepositoryDelete(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPatternRepository(db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, samplePattern(1)); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	got, err := repo.GetByUser(ctx, 1)
	if err != nil || got != nil {
		t.Errorf("after delete: got=%v err=%v, want nil, nil", got, err)
	}
}
