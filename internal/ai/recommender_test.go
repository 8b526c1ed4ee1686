package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yuqie6/GameLens/internal/schema"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, maxRetries int) (*RecommenderClient, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewRecommenderClient(&RecommenderConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		TimeoutSec: 5,
		MaxRetries: maxRetries,
	})
	client.backoff = time.Millisecond
	return client, server
}

func scoreFixture() ([]schema.Game, []schema.Interaction) {
	candidates := []schema.Game{{ID: 1, Title: "Star Forge"}, {ID: 2, Title: "Quiet Garden"}}
	history := []schema.Interaction{{UserID: 1, GameID: 3, Type: schema.InteractionLike, Timestamp: 1714564800000}}
	return candidates, history
}

func TestScoresSuccess(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"scores":[{"game_id":1,"score":0.9},{"game_id":2,"score":0.4}]}`))
	}, 0)

	candidates, history := scoreFixture()
	scores, err := client.Scores(context.Background(), 1, candidates, history)
	if err != nil {
		t.Fatalf("Scores error: %v", err)
	}
	if scores[1] != 0.9 || scores[2] != 0.4 {
		t.Errorf("scores=%v, want {1:0.9, 2:0.4}", scores)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization=%q, want Bearer test-key", gotAuth)
	}
}

func TestScoresRetriesTransientFailure(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"scores":[{"game_id":1,"score":0.7}]}`))
	}, 2)

	candidates, history := scoreFixture()
	scores, err := client.Scores(context.Background(), 1, candidates, history)
	if err != nil {
		t.Fatalf("Scores error: %v, want success after retries", err)
	}
	if attempts != 3 {
		t.Errorf("attempts=%d, want 3 (first + 2 retries)", attempts)
	}
	if scores[1] != 0.7 {
		t.Errorf("scores=%v, want {1:0.7}", scores)
	}
}

func TestScoresExhaustsRetries(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 2)

	candidates, history := scoreFixture()
	if _, err := client.Scores(context.Background(), 1, candidates, history); err == nil {
		t.Fatal("want error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("attempts=%d, want 3", attempts)
	}
}

func TestScoresNoRetryOnClientError(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}, 3)

	candidates, history := scoreFixture()
	if _, err := client.Scores(context.Background(), 1, candidates, history); err == nil {
		t.Fatal("want error on 400 response")
	}
	// 4xx 不可重试，只打一次
	if attempts != 1 {
		t.Errorf("attempts=%d, want 1", attempts)
	}
}

func TestScoresContextCancelledDuringBackoff(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 5)
	client.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	candidates, history := scoreFixture()
	_, err := client.Scores(ctx, 1, candidates, history)
	if err != context.Canceled {
		t.Errorf("err=%v, want context.Canceled", err)
	}
}

func TestIsConfigured(t *testing.T) {
	if NewRecommenderClient(nil).IsConfigured() {
		t.Error("empty client reports configured")
	}
	if !NewRecommenderClient(&RecommenderConfig{BaseURL: "http://localhost:9000"}).IsConfigured() {
		t.Error("configured client reports unconfigured")
	}
}
