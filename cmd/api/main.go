package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-suggester/internal/api"
	"recipe-suggester/internal/api/handlers/health"
	"recipe-suggester/internal/core/ai/cache"
	"recipe-suggester/internal/core/ai/gemini"
	"recipe-suggester/internal/core/ai/openai"
	"recipe-suggester/internal/core/ai/provider"
	"recipe-suggester/internal/core/ai/queue"
	aiservice "recipe-suggester/internal/core/ai/service"
	"recipe-suggester/internal/core/bookmark"
	"recipe-suggester/internal/core/recipe"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/infrastructure/store/mongodb"
	"recipe-suggester/internal/pkg/common"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("credential", config.MaskAPIKey(cfg.LLM.Credential())),
		zap.String("model", cfg.LLM.ModelName()),
		zap.Bool("fallback_enabled", cfg.Generation.FallbackEnabled),
	)

	ctx := context.Background()
	probes := map[string]health.Probe{}

	// 上游生成服務
	upstream, err := newProvider(ctx, cfg.LLM)
	if err != nil {
		common.LogError("Failed to initialize upstream provider", zap.Error(err))
		os.Exit(1)
	}
	responseCache := newCache(ctx, cfg.Cache)
	aiService := aiservice.NewService(upstream, responseCache, queue.NewManager(cfg.Generation.MaxConcurrent), cfg.LLM.Timeout)
	defer aiService.Close()
	if responseCache != nil {
		probes["cache"] = aiService.Ping
	}

	var client recipe.UpstreamClient
	if aiService.Configured() {
		client = aiService
	}
	recipeService := recipe.NewService(client, recipe.NewFallbackGenerator(nil), cfg.Generation.FallbackEnabled)

	// 書籤服務
	var bookmarkService *bookmark.Service
	if cfg.Bookmarks.Enabled() {
		mongoClient, err := connectMongo(ctx, cfg.Bookmarks)
		if err != nil {
			common.LogError("Failed to connect to MongoDB, bookmarks disabled", zap.Error(err))
		} else {
			defer func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := mongoClient.Disconnect(disconnectCtx); err != nil {
					common.LogWarn("Failed to disconnect MongoDB", zap.Error(err))
				}
			}()

			repoCtx, cancel := context.WithTimeout(ctx, cfg.Bookmarks.Timeout)
			repo := mongodb.NewBookmarkRepo(repoCtx, mongoClient.Database(cfg.Bookmarks.Database))
			cancel()

			bookmarkService = bookmark.NewService(repo)
			probes["bookmarks"] = func(ctx context.Context) error {
				return mongoClient.Ping(ctx, nil)
			}
		}
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		AIService:       aiService,
		RecipeService:   recipeService,
		BookmarkService: bookmarkService,
		Probes:          probes,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("upstream_configured", aiService.Configured()),
			zap.Bool("bookmarks_enabled", bookmarkService != nil),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

// newProvider 依設定建立上游客戶端，未設定憑證時回傳 nil
func newProvider(ctx context.Context, cfg config.LLMConfig) (provider.Provider, error) {
	if !cfg.Configured() {
		common.LogWarn("Upstream credential not set, using fallback generator only",
			zap.String("provider", cfg.Provider),
		)
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return openai.NewClient(cfg), nil
	}
}

// newCache 建立上游回應快取，redis 無法連線時改用記憶體快取
func newCache(ctx context.Context, cfg config.CacheConfig) cache.Cache {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Backend == config.CacheBackendRedis {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		rc, err := cache.NewRedisCache(pingCtx, cfg)
		if err == nil {
			return rc
		}
		common.LogWarn("Redis cache unavailable, falling back to memory cache", zap.Error(err))
		if cfg.MaxSize <= 0 {
			cfg.MaxSize = 500
		}
		if cfg.CleanupInterval <= 0 {
			cfg.CleanupInterval = 10 * time.Minute
		}
	}

	return cache.NewManager(cfg)
}

// connectMongo 連線書籤資料庫
func connectMongo(ctx context.Context, cfg config.BookmarksConfig) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	return mongodb.Connect(connectCtx, cfg.MongoURI)
}
