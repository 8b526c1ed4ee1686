package eventbus

import (
	"context"
	"sync"
	"time"
)

// 事件类型（用于管理端实时 SSE 流）
const (
	TypeInteraction    = "interaction"     // 新交互事件入库
	TypePatternUpdated = "pattern_updated" // 行为画像重算完成
	TypeConfigChanged  = "config_changed"  // 系统开关变更
)

type Event struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Hub 进程内事件总线：发布端不阻塞，慢订阅者丢事件
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			// 慢消费者直接丢弃，避免阻塞请求链路
		}
	}
}

func (h *Hub) Subscribe(ctx context.Context, buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// SubscriberCount 当前订阅者数量（诊断用）
func (h *Hub) SubscriberCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
