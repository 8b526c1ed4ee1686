package schema

import (
	"reflect"
	"testing"
)

func TestJSONArrayScanMalformed(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  JSONArray
	}{
		{"valid", `["action","rpg"]`, JSONArray{"action", "rpg"}},
		{"malformed", `{not json`, JSONArray{}},
		{"nil", nil, JSONArray{}},
		{"wrong type", 42, JSONArray{}},
	}
	for _, tt := range tests {
		var j JSONArray
		if err := j.Scan(tt.value); err != nil {
			t.Errorf("%s: Scan error: %v, malformed content must not fail", tt.name, err)
		}
		if !reflect.DeepEqual(j, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, j, tt.want)
		}
	}
}

func TestPricePreferenceScanMalformed(t *testing.T) {
	var p PricePreference
	if err := p.Scan(`garbage`); err != nil {
		t.Fatalf("Scan error: %v, malformed content must not fail", err)
	}
	if p.Weight != 0 {
		t.Errorf("Weight=%v, want zero value preserved", p.Weight)
	}

	if err := p.Scan(`{"min_price":5,"max_price":22,"avg_price":15.67,"weight":2.5}`); err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if p.MinPrice != 5 || p.MaxPrice != 22 || p.Weight != 2.5 {
		t.Errorf("got %+v, want parsed preference", p)
	}
}
