package schema

import (
	"database/sql/driver"
	"time"
)

// 所有偏好权重恒定落在 [1.0, 3.0]：无偏好时取 1.0（中性），上限 3.0 防止个性化失控。
const (
	MinPreferenceWeight = 1.0
	MaxPreferenceWeight = 3.0
)

// PricePreference 价格偏好：价格越集中权重越高
type PricePreference struct {
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
	AvgPrice float64 `json:"avg_price"`
	Weight   float64 `json:"weight"`
}

func (p PricePreference) Value() (driver.Value, error) { return jsonColumnValue(p) }
func (p *PricePreference) Scan(value interface{}) error {
	return jsonColumnScan(p, value)
}

// ReleaseDatePreference 发行年份偏好：交互年份越新权重越高
type ReleaseDatePreference struct {
	PreferredYears []int   `json:"preferred_years"` // 最多 3 个高频年份
	Weight         float64 `json:"weight"`
}

func (p ReleaseDatePreference) Value() (driver.Value, error) { return jsonColumnValue(p) }
func (p *ReleaseDatePreference) Scan(value interface{}) error {
	return jsonColumnScan(p, value)
}

// GenrePreference 流派偏好：每个高频流派按出现占比单独计权
type GenrePreference struct {
	PreferredGenres []string           `json:"preferred_genres"` // 最多 5 个高频流派
	Weights         map[string]float64 `json:"weights"`          // 流派 → 权重
}

func (p GenrePreference) Value() (driver.Value, error) { return jsonColumnValue(p) }
func (p *GenrePreference) Scan(value interface{}) error {
	return jsonColumnScan(p, value)
}

// PublisherPreference 发行商偏好：头部发行商占比驱动单一权重
type PublisherPreference struct {
	PreferredPublishers []string `json:"preferred_publishers"` // 最多 3 个高频发行商
	Weight              float64  `json:"weight"`
}

func (p PublisherPreference) Value() (driver.Value, error) { return jsonColumnValue(p) }
func (p *PublisherPreference) Scan(value interface{}) error {
	return jsonColumnScan(p, value)
}

// PlatformPreference 平台偏好：结构同发行商偏好
type PlatformPreference struct {
	PreferredPlatforms []string `json:"preferred_platforms"` // 最多 3 个高频平台
	Weight             float64  `json:"weight"`
}

func (p PlatformPreference) Value() (driver.Value, error) { return jsonColumnValue(p) }
func (p *PlatformPreference) Scan(value interface{}) error {
	return jsonColumnScan(p, value)
}

// BehaviorPattern 用户行为画像缓存 - 由滑动窗口内的交互事件推导
// 可随时删除重算，交互日志才是事实来源。
type BehaviorPattern struct {
	UserID            int64                 `gorm:"primaryKey" json:"user_id"`
	Price             PricePreference       `gorm:"type:text" json:"price"`
	ReleaseDate       ReleaseDatePreference `gorm:"type:text" json:"release_date"`
	Genre             GenrePreference       `gorm:"type:text" json:"genre"`
	Publisher         PublisherPreference   `gorm:"type:text" json:"publisher"`
	Platform          PlatformPreference    `gorm:"type:text" json:"platform"`
	TotalInteractions int                   `gorm:"default:0" json:"total_interactions"`
	LastAnalyzed      int64                 `gorm:"default:0" json:"last_analyzed"` // Unix 时间戳（毫秒）
	CreatedAt         time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (BehaviorPattern) TableName() string {
	return "behavior_patterns"
}
