package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yuqie6/GameLens/internal/eventbus"
	"github.com/yuqie6/GameLens/internal/repository"
	"github.com/yuqie6/GameLens/internal/schema"
)

// InteractionService 交互事件服务：落库 + 广播
type InteractionService struct {
	interactionRepo InteractionRepository
	gameRepo        GameRepository
	hub             *eventbus.Hub
	now             func() time.Time
}

// NewInteractionService 创建交互事件服务
func NewInteractionService(
	interactionRepo InteractionRepository,
	gameRepo GameRepository,
	hub *eventbus.Hub,
) *InteractionService {
	return &InteractionService{
		interactionRepo: interactionRepo,
		gameRepo:        gameRepo,
		hub:             hub,
		now:             time.Now,
	}
}

// Record 记录一次交互事件并广播到事件总线。
// rating 仅对 review 事件生效，其余类型忽略。
func (s *InteractionService) Record(ctx context.Context, userID, gameID int64, typ string, rating float64) (*schema.Interaction, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("user_id 必须为正数")
	}
	if !schema.ValidInteractionType(typ) {
		return nil, fmt.Errorf("不支持的交互类型: %s", typ)
	}

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("游戏不存在: id=%d", gameID)
	}

	event := &schema.Interaction{
		UserID:    userID,
		GameID:    gameID,
		Type:      typ,
		Timestamp: s.now().UnixMilli(),
	}
	if typ == schema.InteractionReview {
		event.Rating = rating
	}

	if err := s.interactionRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.hub.Publish(eventbus.Event{
		Type: eventbus.TypeInteraction,
		Data: map[string]any{
			"user_id": userID,
			"game_id": gameID,
			"type":    typ,
		},
	})

	return event, nil
}

// WindowStats 返回窗口内按类型的交互统计
func (s *InteractionService) WindowStats(ctx context.Context, userID int64, windowDays int) ([]repository.TypeStat, error) {
	startMs := repository.WindowStart(s.now(), windowDays)
	return s.interactionRepo.GetTypeStats(ctx, userID, startMs)
}

// InteractionOverview 用户交互概览：窗口内分类型统计 + 全量交互数 + 目录规模
type InteractionOverview struct {
	UserID            int64                 `json:"user_id"`
	WindowDays        int                   `json:"window_days"`
	TotalInteractions int64                 `json:"total_interactions"`
	CatalogSize       int64                 `json:"catalog_size"`
	ByType            []repository.TypeStat `json:"by_type"`
}

// Overview 汇总窗口统计与全量计数
func (s *InteractionService) Overview(ctx context.Context, userID int64, windowDays int) (*InteractionOverview, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	stats, err := s.WindowStats(ctx, userID, windowDays)
	if err != nil {
		return nil, err
	}
	total, err := s.interactionRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalogSize, err := s.gameRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &InteractionOverview{
		UserID:            userID,
		WindowDays:        windowDays,
		TotalInteractions: total,
		CatalogSize:       catalogSize,
		ByType:            stats,
	}, nil
}
