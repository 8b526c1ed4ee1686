package schema

import (
	"strconv"
	"time"
)

// Game 游戏目录条目（分析时按交互快照读取）
// 数据量级：万级
type Game struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:255;index" json:"title"`
	Price       float64   `gorm:"default:0" json:"price"`             // 单位：元，0 表示免费或未知
	ReleaseDate string    `gorm:"size:10" json:"release_date"`        // YYYY-MM-DD
	Publisher   string    `gorm:"size:255;index" json:"publisher"`    // 发行商
	Genres      JSONArray `gorm:"type:text" json:"genres"`            // 流派列表 ["action", "rpg"]
	Platforms   JSONArray `gorm:"type:text" json:"platforms"`         // 平台列表 ["pc", "switch"]
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Game) TableName() string {
	return "games"
}

// minValidReleaseYear 早于该年份的发行年份视为脏数据，不参与分析
const minValidReleaseYear = 1990

// ReleaseYear 解析发行年份；无法解析或 ≤1990 时返回 0（调用方跳过该维度）
func (g *Game) ReleaseYear() int {
	if len(g.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(g.ReleaseDate[:4])
	if err != nil || year <= minValidReleaseYear {
		return 0
	}
	return year
}
