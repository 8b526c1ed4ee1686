package repository

import (
	"context"
	"testing"

	"github.com/yuqie6/GameLens/internal/schema"
	"github.com/yuqie6/GameLens/internal/testutil"
)

func TestSystemConfigRepositoryGetBoolDefault(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSystemConfigRepository(db)
	ctx := context.Background()

	// 行不存在时返回调用方给的默认值
	got, err := repo.GetBool(ctx, schema.KeyDynamicMultiplierEnabled, false)
	if err != nil || got != false {
		t.Errorf("GetBool=%v err=%v, want false", got, err)
	}
	got, err = repo.GetBool(ctx, schema.KeyDynamicMultiplierEnabled, true)
	if err != nil || got != true {
		t.Errorf("GetBool=%v err=%v, want default true", got, err)
	}
}

func TestSystemConfigRepositorySetAndGet(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSystemConfigRepository(db)
	ctx := context.Background()

	if err := repo.Set(ctx, schema.KeyDynamicMultiplierEnabled, "true", "动态乘数开关"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, err := repo.GetBool(ctx, schema.KeyDynamicMultiplierEnabled, false)
	if err != nil || !got {
		t.Errorf("GetBool=%v err=%v, want true", got, err)
	}

	// 覆盖写入立即生效
	if err := repo.Set(ctx, schema.KeyDynamicMultiplierEnabled, "false", ""); err != nil {
		t.Fatalf("second Set error: %v", err)
	}
	got, err = repo.GetBool(ctx, schema.KeyDynamicMultiplierEnabled, true)
	if err != nil || got {
		t.Errorf("GetBool=%v err=%v, want false after overwrite", got, err)
	}
}

func TestSystemConfigRepositoryBoolForms(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSystemConfigRepository(db)
	ctx := context.Background()

	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"on", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"whatever", false},
	}
	for _, tt := range tests {
		if err := repo.Set(ctx, "flag", tt.value, ""); err != nil {
			t.Fatalf("Set(%q) error: %v", tt.value, err)
		}
		got, err := repo.GetBool(ctx, "flag", !tt.want)
		if err != nil || got != tt.want {
			t.Errorf("GetBool after Set(%q)=%v err=%v, want %v", tt.value, got, err, tt.want)
		}
	}
}

func TestSystemConfigRepositoryList(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSystemConfigRepository(db)
	ctx := context.Background()

	_ = repo.Set(ctx, "b_key", "2", "")
	_ = repo.Set(ctx, "a_key", "1", "")

	configs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(configs) != 2 || configs[0].ConfigKey != "a_key" {
		t.Errorf("configs=%v, want 2 entries sorted by key", configs)
	}
}
