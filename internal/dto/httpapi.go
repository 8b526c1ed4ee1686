package dto

// 注意：本包用于承载“对外契约”的 DTO（与前端/HTTP API 保持稳定）。
// 不要在这里放 GORM/持久化细节；内部持久化 schema 请见 internal/schema；业务逻辑收敛在 internal/service。

type GameDTO struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	ReleaseDate string   `json:"release_date"`
	Publisher   string   `json:"publisher"`
	Genres      []string `json:"genres"`
	Platforms   []string `json:"platforms"`
}

type CreateGameRequest struct {
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	ReleaseDate string   `json:"release_date"`
	Publisher   string   `json:"publisher"`
	Genres      []string `json:"genres"`
	Platforms   []string `json:"platforms"`
}

type InteractionDTO struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	GameID    int64   `json:"game_id"`
	Type      string  `json:"type"`
	Rating    float64 `json:"rating,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

type RecordInteractionRequest struct {
	UserID int64   `json:"user_id"`
	GameID int64   `json:"game_id"`
	Type   string  `json:"type"`
	Rating float64 `json:"rating,omitempty"`
}

type PricePreferenceDTO struct {
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
	AvgPrice float64 `json:"avg_price"`
	Weight   float64 `json:"weight"`
}

type ReleaseDatePreferenceDTO struct {
	PreferredYears []int   `json:"preferred_years"`
	Weight         float64 `json:"weight"`
}

type GenrePreferenceDTO struct {
	PreferredGenres []string           `json:"preferred_genres"`
	Weights         map[string]float64 `json:"weights"`
}

type EntityPreferenceDTO struct {
	Preferred []string `json:"preferred"`
	Weight    float64  `json:"weight"`
}

type BehaviorPatternDTO struct {
	UserID            int64                    `json:"user_id"`
	Price             PricePreferenceDTO       `json:"price"`
	ReleaseDate       ReleaseDatePreferenceDTO `json:"release_date"`
	Genre             GenrePreferenceDTO       `json:"genre"`
	Publisher         EntityPreferenceDTO      `json:"publisher"`
	Platform          EntityPreferenceDTO      `json:"platform"`
	TotalInteractions int                      `json:"total_interactions"`
	LastAnalyzed      int64                    `json:"last_analyzed"`
	FromCache         bool                     `json:"from_cache"`
}

type RecommendationDTO struct {
	Game       GameDTO `json:"game"`
	BaseScore  float64 `json:"base_score"`
	Multiplier float64 `json:"multiplier"`
	FinalScore float64 `json:"final_score"`
}

type RecommendResultDTO struct {
	UserID int64               `json:"user_id"`
	Source string              `json:"source"`
	Items  []RecommendationDTO `json:"items"`
}

type SystemConfigDTO struct {
	ConfigKey   string `json:"config_key"`
	ConfigValue string `json:"config_value"`
	Description string `json:"description"`
}

type SetConfigRequest struct {
	ConfigValue string `json:"config_value"`
	Description string `json:"description,omitempty"`
}

type HealthDTO struct {
	Status        string `json:"status"` // ok | degraded
	Version       string `json:"version"`
	SafeMode      bool   `json:"safe_mode"`
	SchemaVersion int    `json:"schema_version"`
}
