package api

import (
	"fmt"
	"time"

	bookmarkHandler "recipe-suggester/internal/api/handlers/bookmark"
	"recipe-suggester/internal/api/handlers/health"
	recipeHandler "recipe-suggester/internal/api/handlers/recipe"
	"recipe-suggester/internal/api/middleware"
	aiservice "recipe-suggester/internal/core/ai/service"
	"recipe-suggester/internal/core/bookmark"
	"recipe-suggester/internal/core/recipe"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/infrastructure/metrics"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	AIService       *aiservice.Service
	RecipeService   *recipe.Service
	BookmarkService *bookmark.Service
	Probes          map[string]health.Probe
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.RecipeService == nil {
		return nil, fmt.Errorf("recipe service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", common.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", common.RequestIDHeader, recipe.SourceHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 注入健康檢查需要的配置與服務
	router.Use(func(c *gin.Context) {
		c.Set(health.ContextKeyConfig, cfg)
		c.Set(health.ContextKeyAIService, deps.AIService)
		c.Set(health.ContextKeyProbes, deps.Probes)
		c.Next()
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(metrics.Handler()))
	}

	recipes := recipeHandler.NewHandler(deps.RecipeService)
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)

	router.POST("/generate-recipes", dedup.Middleware(), recipes.HandleGenerateRecipes)

	legacy := router.Group("/api")
	{
		legacy.GET("/hello", recipeHandler.HandleHello)
		legacy.POST("/generate-recipes", dedup.Middleware(), recipes.HandleGenerateRecipes)
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/generate-recipes", dedup.Middleware(), recipes.HandleGenerateRecipes)

		bookmarks := bookmarkHandler.NewHandler(deps.BookmarkService)
		users := v1.Group("/users/:uid", bookmarks.RequireEnabled())
		{
			users.POST("/bookmarks", bookmarks.HandleAdd)
			users.GET("/bookmarks", bookmarks.HandleList)
			users.GET("/bookmarks/:id", bookmarks.HandleGet)
			users.DELETE("/bookmarks/:id", bookmarks.HandleRemove)
			users.PUT("/bookmarks/:id/rating", bookmarks.HandleRate)
			users.POST("/bookmark-lookup", bookmarks.HandleLookup)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("upstream_configured", deps.AIService != nil && deps.AIService.Configured()),
		zap.Bool("fallback_enabled", deps.RecipeService.FallbackEnabled()),
		zap.Bool("bookmarks_enabled", deps.BookmarkService != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
