package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuqie6/GameLens/internal/ai"
	"github.com/yuqie6/GameLens/internal/eventbus"
	"github.com/yuqie6/GameLens/internal/pkg/config"
	"github.com/yuqie6/GameLens/internal/repository"
	"github.com/yuqie6/GameLens/internal/schema"
	"github.com/yuqie6/GameLens/internal/service"
)

var (
	cfgFile string
	cfg     *config.Config
	db      *repository.Database
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lens",
		Short: "GameLens - 游戏商店个性化打分服务",
		Long:  `GameLens 从用户交互日志推导行为画像，对外部推荐服务给出的基础分做有界的个性化调整。`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// 加载配置
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				slog.Error("加载配置失败", "error", err)
				os.Exit(1)
			}
			config.SetupLogger(cfg.App.LogLevel)

			// 初始化数据库
			db, err = repository.NewDatabase(cfg.Storage.DBPath)
			if err != nil {
				slog.Error("初始化数据库失败", "error", err)
				os.Exit(1)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	// 添加子命令
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(recommendCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// seedCmd 写入演示目录与交互数据
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "写入演示用的游戏目录与交互事件",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			gameRepo := repository.NewGameRepository(db.DB)
			interactionRepo := repository.NewInteractionRepository(db.DB)

			games := []*schema.Game{
				{Title: "Star Forge", Price: 20, ReleaseDate: "2023-04-12", Publisher: "Nebula Works", Genres: schema.JSONArray{"action", "rpg"}, Platforms: schema.JSONArray{"pc", "ps5"}},
				{Title: "Circuit Sprint", Price: 22, ReleaseDate: "2022-09-01", Publisher: "Nebula Works", Genres: schema.JSONArray{"action", "racing"}, Platforms: schema.JSONArray{"pc"}},
				{Title: "Quiet Garden", Price: 5, ReleaseDate: "2010-06-20", Publisher: "Moss House", Genres: schema.JSONArray{"puzzle"}, Platforms: schema.JSONArray{"pc", "switch"}},
				{Title: "Iron Tactics", Price: 35, ReleaseDate: "2024-01-30", Publisher: "Forge Ten", Genres: schema.JSONArray{"strategy"}, Platforms: schema.JSONArray{"pc"}},
				{Title: "Deep Drift", Price: 18, ReleaseDate: "2023-11-05", Publisher: "Nebula Works", Genres: schema.JSONArray{"action", "adventure"}, Platforms: schema.JSONArray{"pc", "xbox"}},
			}
			for _, g := range games {
				if err := gameRepo.Create(ctx, g); err != nil {
					slog.Error("写入游戏失败", "title", g.Title, "error", err)
					os.Exit(1)
				}
			}

			events := []schema.Interaction{
				*schema.NewInteraction(1, games[0].ID, schema.InteractionPurchase),
				*schema.NewInteraction(1, games[1].ID, schema.InteractionView),
				*schema.NewInteraction(1, games[2].ID, schema.InteractionWishlist),
				*schema.NewInteraction(1, games[4].ID, schema.InteractionLike),
			}
			if err := interactionRepo.BatchInsert(ctx, events); err != nil {
				slog.Error("写入交互事件失败", "error", err)
				os.Exit(1)
			}

			fmt.Printf("✅ 已写入 %d 个游戏、%d 条交互事件\n", len(games), len(events))
		},
	}
}

// analyzeCmd 重算并打印用户行为画像
func analyzeCmd() *cobra.Command {
	var userID int64
	var days int

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "分析用户行为画像",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			analyzer := service.NewBehaviorAnalyzer(
				repository.NewInteractionRepository(db.DB),
				repository.NewGameRepository(db.DB),
				repository.NewPatternRepository(db.DB),
			)

			pattern, err := analyzer.AnalyzeAndCache(ctx, userID, days)
			if err != nil {
				slog.Error("分析失败", "error", err)
				os.Exit(1)
			}
			if pattern == nil {
				fmt.Printf("用户 %d 在最近 %d 天内没有交互记录\n", userID, days)
				return
			}

			fmt.Printf("用户 %d 行为画像（%d 条交互）\n", pattern.UserID, pattern.TotalInteractions)
			fmt.Printf("  价格:   min=%.2f max=%.2f avg=%.2f weight=%.2f\n",
				pattern.Price.MinPrice, pattern.Price.MaxPrice, pattern.Price.AvgPrice, pattern.Price.Weight)
			fmt.Printf("  年份:   %v weight=%.2f\n", pattern.ReleaseDate.PreferredYears, pattern.ReleaseDate.Weight)
			fmt.Printf("  流派:   %v\n", pattern.Genre.PreferredGenres)
			fmt.Printf("  发行商: %v weight=%.2f\n", pattern.Publisher.PreferredPublishers, pattern.Publisher.Weight)
			fmt.Printf("  平台:   %v weight=%.2f\n", pattern.Platform.PreferredPlatforms, pattern.Platform.Weight)
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "用户 ID")
	cmd.Flags().IntVarP(&days, "days", "d", 0, "窗口天数（默认取配置）")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// recommendCmd 生成并打印推荐列表
func recommendCmd() *cobra.Command {
	var userID int64
	var limit int

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "为用户生成推荐列表",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			gameRepo := repository.NewGameRepository(db.DB)
			interactionRepo := repository.NewInteractionRepository(db.DB)
			patternRepo := repository.NewPatternRepository(db.DB)
			configRepo := repository.NewSystemConfigRepository(db.DB)

			analyzer := service.NewBehaviorAnalyzer(interactionRepo, gameRepo, patternRepo)
			calculator := service.NewDynamicScoreCalculator(
				interactionRepo, gameRepo, configRepo,
				cfg.Scoring.DynamicMultiplierDefault, cfg.Scoring.WindowDays,
			)

			fallback, err := service.NewVectorFallback(gameRepo, &service.VectorFallbackConfig{
				StoragePath: cfg.Storage.VectorPath,
			})
			if err != nil {
				slog.Error("初始化向量兜底失败", "error", err)
				os.Exit(1)
			}
			if _, err := fallback.IndexAll(ctx); err != nil {
				slog.Warn("索引游戏目录失败", "error", err)
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
			}

			recommender := service.NewRecommendService(
				analyzer, calculator, gameRepo, interactionRepo,
				baseScorer, fallback, eventbus.NewHub(), cfg.Scoring.WindowDays,
			)

			result, err := recommender.Recommend(ctx, userID, limit)
			if err != nil {
				slog.Error("生成推荐失败", "error", err)
				os.Exit(1)
			}

			fmt.Printf("用户 %d 推荐列表（基础分来源: %s）\n", result.UserID, result.Source)
			for i, item := range result.Items {
				fmt.Printf("  %2d. %-20s base=%.3f ×%.2f → %.3f\n",
					i+1, item.Game.Title, item.BaseScore, item.Multiplier, item.FinalScore)
			}
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "用户 ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "返回条数")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// configCmd 查看/设置系统开关
func configCmd() *cobra.Command {
	var set string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "查看或设置系统开关",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			configRepo := repository.NewSystemConfigRepository(db.DB)

			if set != "" {
				key, value, ok := strings.Cut(set, "=")
				if !ok || key == "" {
					fmt.Println("格式: --set key=value，例如 --set dynamic_multiplier_enabled=true")
					os.Exit(1)
				}
				if err := configRepo.Set(ctx, key, value, ""); err != nil {
					slog.Error("写入配置失败", "error", err)
					os.Exit(1)
				}
				fmt.Printf("✅ %s = %s\n", key, value)
				return
			}

			configs, err := configRepo.List(ctx)
			if err != nil {
				slog.Error("读取配置失败", "error", err)
				os.Exit(1)
			}
			if len(configs) == 0 {
				fmt.Println("（无配置项）")
				return
			}
			for _, c := range configs {
				fmt.Printf("  %s = %s", c.ConfigKey, c.ConfigValue)
				if c.Description != "" {
					fmt.Printf("  # %s", c.Description)
				}
				fmt.Println()
			}
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "设置配置项，格式 key=value")
	return cmd
}
