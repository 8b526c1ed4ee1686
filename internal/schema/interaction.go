package schema

import "time"

// 交互类型。review 事件可附带评分，其余类型 Rating 恒为 0。
const (
	InteractionView     = "view"
	InteractionLike     = "like"
	InteractionPurchase = "purchase"
	InteractionReview   = "review"
	InteractionWishlist = "wishlist"
)

// Interaction 交互事件 - 记录用户对游戏的单次操作，只追加不修改
// 数据量级：百万级/年（查询总是限定在滑动窗口内）
type Interaction struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index:idx_interactions_user_ts" json:"user_id"`
	GameID    int64     `gorm:"index" json:"game_id"`
	Type      string    `gorm:"size:20" json:"type"`
	Rating    float64   `gorm:"default:0" json:"rating"` // 仅 review 事件使用，1-5
	Timestamp int64     `gorm:"index:idx_interactions_user_ts" json:"timestamp"` // Unix 时间戳（毫秒）
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Interaction) TableName() string {
	return "interactions"
}

// NewInteraction 创建交互事件
func NewInteraction(userID, gameID int64, typ string) *Interaction {
	return &Interaction{
		UserID:    userID,
		GameID:    gameID,
		Type:      typ,
		Timestamp: time.Now().UnixMilli(),
	}
}

// ValidInteractionType 校验交互类型是否为已知类型
func ValidInteractionType(typ string) bool {
	switch typ {
	case InteractionView, InteractionLike, InteractionPurchase, InteractionReview, InteractionWishlist:
		return true
	default:
		return false
	}
}
