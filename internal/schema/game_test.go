package schema

import "testing"

func TestGameReleaseYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2023-04-12", 2023},
		{"1991-01-01", 1991},
		{"1990-12-31", 0}, // 1990 及更早视为脏数据
		{"1985-06-01", 0},
		{"bad", 0},
		{"", 0},
		{"20xx-01-01", 0},
	}
	for _, tt := range tests {
		g := Game{ReleaseDate: tt.date}
		if got := g.ReleaseYear(); got != tt.want {
			t.Errorf("ReleaseYear(%q)=%d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestValidInteractionType(t *testing.T) {
	for _, typ := range []string{InteractionView, InteractionLike, InteractionPurchase, InteractionReview, InteractionWishlist} {
		if !ValidInteractionType(typ) {
			t.Errorf("ValidInteractionType(%q)=false, want true", typ)
		}
	}
	if ValidInteractionType("share") {
		t.Error("ValidInteractionType(share)=true, want false")
	}
}
