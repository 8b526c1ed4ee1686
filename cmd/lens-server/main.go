package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yuqie6/GameLens/internal/ai"
	"github.com/yuqie6/GameLens/internal/eventbus"
	"github.com/yuqie6/GameLens/internal/httpapi"
	"github.com/yuqie6/GameLens/internal/pkg/buildinfo"
	"github.com/yuqie6/GameLens/internal/pkg/config"
	"github.com/yuqie6/GameLens/internal/repository"
	"github.com/yuqie6/GameLens/internal/service"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "配置文件路径")
	flag.Parse()

	if cfgPath == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			if _, statErr := os.Stat(p); errors.Is(statErr, os.ErrNotExist) {
				_ = config.WriteFile(p, config.Default())
			}
			cfgPath = p
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("加载配置失败", "error", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg.App.LogLevel)

	slog.Info("GameLens 启动中...", "name", cfg.App.Name, "version", buildinfo.Version, "commit", buildinfo.Commit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		slog.Error("初始化数据库失败", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// 仓储
	gameRepo := repository.NewGameRepository(db.DB)
	interactionRepo := repository.NewInteractionRepository(db.DB)
	patternRepo := repository.NewPatternRepository(db.DB)
	configRepo := repository.NewSystemConfigRepository(db.DB)

	// 服务
	hub := eventbus.NewHub()
	analyzer := service.NewBehaviorAnalyzer(interactionRepo, gameRepo, patternRepo)
	calculator := service.NewDynamicScoreCalculator(
		interactionRepo, gameRepo, configRepo,
		cfg.Scoring.DynamicMultiplierDefault, cfg.Scoring.WindowDays,
	)
	interactions := service.NewInteractionService(interactionRepo, gameRepo, hub)

	fallback, err := service.NewVectorFallback(gameRepo, &service.VectorFallbackConfig{
		StoragePath: cfg.Storage.VectorPath,
	})
	if err != nil {
		slog.Error("初始化向量兜底失败", "error", err)
		os.Exit(1)
	}
	if n, err := fallback.IndexAll(ctx); err != nil {
		slog.Warn("启动时索引游戏目录失败", "error", err)
	} else {
		slog.Info("启动索引完成", "games", n)
	}

	var baseScorer service.BaseScorer
	aiClient := ai.NewRecommenderClient(&ai.RecommenderConfig{
		BaseURL:    cfg.AI.Recommender.BaseURL,
		APIKey:     cfg.AI.Recommender.APIKey,
		TimeoutSec: cfg.AI.Recommender.TimeoutSec,
		MaxRetries: cfg.AI.Recommender.MaxRetries,
	})
	if aiClient.IsConfigured() {
		baseScorer = aiClient
		slog.Info("外部推荐服务已配置", "base_url", cfg.AI.Recommender.BaseURL)
	} else {
		slog.Info("外部推荐服务未配置，基础分走本地向量兜底")
	}

	recommender := service.NewRecommendService(
		analyzer, calculator, gameRepo, interactionRepo,
		baseScorer, fallback, hub, cfg.Scoring.WindowDays,
	)

	server, err := httpapi.Start(ctx, &httpapi.Deps{
		Database:     db,
		Version:      buildinfo.Version,
		Hub:          hub,
		GameRepo:     gameRepo,
		ConfigRepo:   configRepo,
		Interactions: interactions,
		Analyzer:     analyzer,
		Recommender:  recommender,
		Fallback:     fallback,
		WindowDays:   cfg.Scoring.WindowDays,
	}, httpapi.Options{ListenAddr: cfg.Server.ListenAddr})
	if err != nil {
		slog.Error("启动 HTTP 服务失败", "error", err)
		os.Exit(1)
	}

	// 日志级别热更新
	config.Watch(cfgPath, func(next *config.Config) {
		config.SetupLogger(next.App.LogLevel)
		slog.Info("日志级别已更新", "level", next.App.LogLevel)
	})

	slog.Info("GameLens 已启动", "base_url", server.BaseURL())

	// 等待系统信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("收到系统退出信号，正在关闭...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = server.Shutdown(shutdownCtx)
	shutdownCancel()

	slog.Info("GameLens 已退出")
}
