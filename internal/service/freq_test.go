package service

import (
	"reflect"
	"testing"
)

func TestTopKeysOrdering(t *testing.T) {
	counts := map[string]int{
		"action":   3,
		"rpg":      3,
		"puzzle":   1,
		"strategy": 2,
	}

	got := topKeys(counts, 3)
	want := []keyCount{
		{Key: "action", Count: 3},
		{Key: "rpg", Count: 3},
		{Key: "strategy", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("topKeys=%v, want %v", got, want)
	}
}

func TestTopKeysDeterministic(t *testing.T) {
	// 全部同频：取前 n 个必须稳定（字典序）
	counts := map[string]int{"c": 1, "a": 1, "b": 1, "d": 1}

	first := topKeys(counts, 2)
	for i := 0; i < 10; i++ {
		if got := topKeys(counts, 2); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: topKeys=%v, first=%v", i, got, first)
		}
	}
	if first[0].Key != "a" || first[1].Key != "b" {
		t.Errorf("topKeys=%v, want a,b", first)
	}
}

func TestTopKeysEdgeCases(t *testing.T) {
	if got := topKeys(nil, 3); got != nil {
		t.Errorf("topKeys(nil)=%v, want nil", got)
	}
	if got := topKeys(map[string]int{"a": 1}, 0); got != nil {
		t.Errorf("topKeys(n=0)=%v, want nil", got)
	}
}

func TestTopYears(t *testing.T) {
	counts := map[int]int{2023: 2, 2010: 1, 2022: 1, 2019: 1}

	got := topYears(counts, 3)
	// 2023 频次最高，其余同频按年份升序
	want := []int{2023, 2010, 2019}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("topYears=%v, want %v", got, want)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{0.5, 1, 3, 1},
		{2, 1, 3, 2},
		{5, 1, 3, 3},
		{0.7, 0.7, 1.5, 0.7},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.min, tt.max); got != tt.want {
			t.Errorf("clamp(%v, %v, %v)=%v, want %v", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}
