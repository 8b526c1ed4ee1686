package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yuqie6/GameLens/internal/schema"
)

// RecommenderClient 外部 Python 推荐服务客户端。
// 基础分完全由外部服务产出，这里只做传输；服务不可用时由调用方走确定性兜底。
type RecommenderClient struct {
	baseURL    string
	apiKey     string
	maxRetries int
	backoff    time.Duration
	client     *http.Client
}

// RecommenderConfig 配置
type RecommenderConfig struct {
	BaseURL    string
	APIKey     string
	TimeoutSec int // 建议 15-30，默认 20
	MaxRetries int // 首次请求之外的重试次数，默认 0
}

// NewRecommenderClient 创建客户端
func NewRecommenderClient(cfg *RecommenderConfig) *RecommenderClient {
	if cfg == nil {
		cfg = &RecommenderConfig{}
	}
	timeout := cfg.TimeoutSec
	if timeout <= 0 {
		timeout = 20
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &RecommenderClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxRetries: maxRetries,
		backoff:    time.Second,
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

// scoreRequest 打分请求
type scoreRequest struct {
	UserID       int64                `json:"user_id"`
	CandidateIDs []int64              `json:"candidate_ids"`
	Interactions []interactionPayload `json:"interactions"`
}

// interactionPayload 交互历史（给推荐服务的特征输入）
type interactionPayload struct {
	GameID    int64   `json:"game_id"`
	Type      string  `json:"type"`
	Rating    float64 `json:"rating,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

// scoreResponse 打分响应
type scoreResponse struct {
	Scores []gameScore `json:"scores"`
}

// gameScore 单个游戏的基础分
type gameScore struct {
	GameID int64   `json:"game_id"`
	Score  float64 `json:"score"`
}

// Scores 请求外部服务为候选游戏打基础分，返回 game_id → score 映射。
// 可重试错误（网络错误、5xx）按指数退避最多重试 maxRetries 次。
func (c *RecommenderClient) Scores(ctx context.Context, userID int64, candidates []schema.Game, history []schema.Interaction) (map[int64]float64, error) {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// 指数退避：1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * c.backoff
			slog.Warn("推荐服务调用失败，准备重试", "attempt", i, "backoff", backoff, "error", lastErr)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		scores, err := c.scoresOnce(ctx, userID, candidates, history)
		if err == nil {
			return scores, nil
		}
		lastErr = err

		// 检查是否是可重试错误（网络错误、5xx 错误）
		if !isRetryableError(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("达到最大重试次数 (%d): %w", c.maxRetries, lastErr)
}

// scoresOnce 单次打分请求
func (c *RecommenderClient) scoresOnce(ctx context.Context, userID int64, candidates []schema.Game, history []schema.Interaction) (map[int64]float64, error) {
	req := scoreRequest{
		UserID:       userID,
		CandidateIDs: make([]int64, 0, len(candidates)),
		Interactions: make([]interactionPayload, 0, len(history)),
	}
	for _, g := range candidates {
		req.CandidateIDs = append(req.CandidateIDs, g.ID)
	}
	for _, it := range history {
		req.Interactions = append(req.Interactions, interactionPayload{
			GameID:    it.GameID,
			Type:      it.Type,
			Rating:    it.Rating,
			Timestamp: it.Timestamp,
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/recommendations/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("推荐服务错误", "status", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("推荐服务错误: %s", resp.Status)
	}

	var scoreResp scoreResponse
	if err := json.Unmarshal(respBody, &scoreResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	scores := make(map[int64]float64, len(scoreResp.Scores))
	for _, s := range scoreResp.Scores {
		scores[s.GameID] = s.Score
	}

	slog.Debug("推荐服务打分成功", "user_id", userID, "candidates", len(candidates), "scored", len(scores))
	return scores, nil
}

// IsConfigured 检查是否已配置
func (c *RecommenderClient) IsConfigured() bool {
	return c.baseURL != ""
}

// isRetryableError 判断是否是可重试错误
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// 网络错误或 5xx 错误可重试
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}
