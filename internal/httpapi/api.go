package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/yuqie6/GameLens/internal/dto"
	"github.com/yuqie6/GameLens/internal/eventbus"
	"github.com/yuqie6/GameLens/internal/repository"
	"github.com/yuqie6/GameLens/internal/schema"
	"github.com/yuqie6/GameLens/internal/service"
)

// Deps HTTP 层依赖集合（由 cmd 装配）
type Deps struct {
	Database     *repository.Database
	Version      string
	Hub          *eventbus.Hub
	GameRepo     service.GameRepository
	ConfigRepo   service.SystemConfigRepository
	Interactions *service.InteractionService
	Analyzer     *service.BehaviorAnalyzer
	Recommender  *service.RecommendService
	Fallback     *service.VectorFallback
	WindowDays   int
}

type apiServer struct {
	deps *Deps
	hub  *eventbus.Hub
}

func newAPI(deps *Deps, hub *eventbus.Hub) *apiServer {
	return &apiServer{deps: deps, hub: hub}
}

func (a *apiServer) registerJSONRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/games", a.wrapAny(a.games))
	mux.HandleFunc("/api/interactions", a.wrapPOST(a.recordInteraction))
	mux.HandleFunc("/api/interactions/stats", a.wrapGET(a.interactionStats))
	mux.HandleFunc("/api/recommendations", a.wrapGET(a.recommendations))
	mux.HandleFunc("/api/pattern", a.wrapGET(a.getPattern))
	mux.HandleFunc("/api/pattern/refresh", a.wrapPOST(a.refreshPattern))
	mux.HandleFunc("/api/admin/config", a.wrapAny(a.systemConfig))
}

func (a *apiServer) wrapGET(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

func (a *apiServer) wrapPOST(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

func (a *apiServer) wrapAny(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { fn(w, r) }
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	safeMode := false
	schemaVersion := 0
	if a.deps.Database != nil {
		safeMode = a.deps.Database.SafeMode
		schemaVersion = a.deps.Database.SchemaVersion
		if safeMode {
			status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, &dto.HealthDTO{
		Status:        status,
		Version:       a.deps.Version,
		SafeMode:      safeMode,
		SchemaVersion: schemaVersion,
	})
}

// games GET 列表 / POST 新建
func (a *apiServer) games(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listGames(w, r)
	case http.MethodPost:
		a.createGame(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *apiServer) listGames(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	games, err := a.deps.GameRepo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := make([]dto.GameDTO, 0, len(games))
	for i := range games {
		result = append(result, gameToDTO(&games[i]))
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) createGame(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	game := &schema.Game{
		Title:       req.Title,
		Price:       req.Price,
		ReleaseDate: req.ReleaseDate,
		Publisher:   req.Publisher,
		Genres:      schema.JSONArray(req.Genres),
		Platforms:   schema.JSONArray(req.Platforms),
	}
	if err := a.deps.GameRepo.Create(r.Context(), game); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// 兜底索引写入失败不影响创建
	if a.deps.Fallback != nil {
		_ = a.deps.Fallback.IndexGame(r.Context(), game)
	}

	writeJSON(w, http.StatusCreated, gameToDTO(game))
}

func (a *apiServer) recordInteraction(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	event, err := a.deps.Interactions.Record(r.Context(), req.UserID, req.GameID, req.Type, req.Rating)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, &dto.InteractionDTO{
		ID:        event.ID,
		UserID:    event.UserID,
		GameID:    event.GameID,
		Type:      event.Type,
		Rating:    event.Rating,
		Timestamp: event.Timestamp,
	})
}

func (a *apiServer) interactionStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	days := queryInt(r, "days", a.deps.WindowDays)

	overview, err := a.deps.Interactions.Overview(r.Context(), userID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (a *apiServer) recommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 10)

	result, err := a.deps.Recommender.Recommend(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]dto.RecommendationDTO, 0, len(result.Items))
	for i := range result.Items {
		it := result.Items[i]
		items = append(items, dto.RecommendationDTO{
			Game:       gameToDTO(&it.Game),
			BaseScore:  it.BaseScore,
			Multiplier: it.Multiplier,
			FinalScore: it.FinalScore,
		})
	}
	writeJSON(w, http.StatusOK, &dto.RecommendResultDTO{
		UserID: result.UserID,
		Source: result.Source,
		Items:  items,
	})
}

func (a *apiServer) getPattern(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	pattern, err := a.deps.Analyzer.CachedPattern(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	fromCache := true
	if pattern == nil {
		// 无缓存时现场分析一次
		pattern, err = a.deps.Analyzer.AnalyzeAndCache(r.Context(), userID, a.deps.WindowDays)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		fromCache = false
	}
	if pattern == nil {
		writeError(w, http.StatusNotFound, "该用户窗口内无交互记录")
		return
	}

	writeJSON(w, http.StatusOK, patternToDTO(pattern, fromCache))
}

func (a *apiServer) refreshPattern(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	days := queryInt(r, "days", a.deps.WindowDays)

	pattern, err := a.deps.Analyzer.AnalyzeAndCache(r.Context(), userID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if pattern == nil {
		writeError(w, http.StatusNotFound, "该用户窗口内无交互记录")
		return
	}

	writeJSON(w, http.StatusOK, patternToDTO(pattern, false))
}

// systemConfig GET 列表 / PUT 写入单键
func (a *apiServer) systemConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		configs, err := a.deps.ConfigRepo.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		result := make([]dto.SystemConfigDTO, 0, len(configs))
		for _, c := range configs {
			result = append(result, dto.SystemConfigDTO{
				ConfigKey:   c.ConfigKey,
				ConfigValue: c.ConfigValue,
				Description: c.Description,
			})
		}
		writeJSON(w, http.StatusOK, result)

	case http.MethodPut:
		key := r.URL.Query().Get("key")
		if key == "" {
			writeError(w, http.StatusBadRequest, "key is required")
			return
		}
		var req dto.SetConfigRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := a.deps.ConfigRepo.Set(r.Context(), key, req.ConfigValue, req.Description); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		a.hub.Publish(eventbus.Event{
			Type: eventbus.TypeConfigChanged,
			Data: map[string]any{"key": key, "value": req.ConfigValue},
		})
		writeJSON(w, http.StatusOK, &dto.SystemConfigDTO{
			ConfigKey:   key,
			ConfigValue: req.ConfigValue,
			Description: req.Description,
		})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// ========== 转换与参数解析 ==========

func gameToDTO(g *schema.Game) dto.GameDTO {
	return dto.GameDTO{
		ID:          g.ID,
		Title:       g.Title,
		Price:       g.Price,
		ReleaseDate: g.ReleaseDate,
		Publisher:   g.Publisher,
		Genres:      g.Genres,
		Platforms:   g.Platforms,
	}
}

func patternToDTO(p *schema.BehaviorPattern, fromCache bool) *dto.BehaviorPatternDTO {
	return &dto.BehaviorPatternDTO{
		UserID: p.UserID,
		Price: dto.PricePreferenceDTO{
			MinPrice: p.Price.MinPrice,
			MaxPrice: p.Price.MaxPrice,
			AvgPrice: p.Price.AvgPrice,
			Weight:   p.Price.Weight,
		},
		ReleaseDate: dto.ReleaseDatePreferenceDTO{
			PreferredYears: p.ReleaseDate.PreferredYears,
			Weight:         p.ReleaseDate.Weight,
		},
		Genre: dto.GenrePreferenceDTO{
			PreferredGenres: p.Genre.PreferredGenres,
			Weights:         p.Genre.Weights,
		},
		Publisher: dto.EntityPreferenceDTO{
			Preferred: p.Publisher.PreferredPublishers,
			Weight:    p.Publisher.Weight,
		},
		Platform: dto.EntityPreferenceDTO{
			Preferred: p.Platform.PreferredPlatforms,
			Weight:    p.Platform.Weight,
		},
		TotalInteractions: p.TotalInteractions,
		LastAnalyzed:      p.LastAnalyzed,
		FromCache:         fromCache,
	}
}

func queryUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("user_id")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id 必须为正整数")
		return 0, false
	}
	return userID, true
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
