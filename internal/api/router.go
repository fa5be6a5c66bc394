package api

import (
	"fmt"
	"time"

	convertHandler "recipe-highlighter/internal/api/handlers/convert"
	"recipe-highlighter/internal/api/handlers/health"
	highlightHandler "recipe-highlighter/internal/api/handlers/highlight"
	"recipe-highlighter/internal/api/middleware"
	"recipe-highlighter/internal/infrastructure/config"
	"recipe-highlighter/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc *Services) (*gin.Engine, error) {
	if svc == nil || svc.Highlight == nil || svc.Evaluation == nil || svc.Convert == nil {
		return nil, fmt.Errorf("router requires highlight, evaluation and convert services")
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
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	// CORS 設置
	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制需在去重之前，去重會讀取整個請求體
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, svc.CacheStats, svc.Checks...)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.Deduplication(cfg.DedupWindow))
	{
		h := highlightHandler.NewHandler(svc.Highlight, svc.Evaluation, cfg.App.Debug)
		highlightGroup := api.Group("/highlight")
		{
			highlightGroup.POST("", h.HandleHighlight)
			highlightGroup.POST("/normalize", h.HandleNormalize)
			highlightGroup.POST("/evaluate", h.HandleEvaluate)
		}

		api.POST("/convert", convertHandler.NewHandler(svc.Convert, cfg.App.Debug).HandleConvert)
	}

	router.NoRoute(func(c *gin.Context) {
		status, resp := common.ToResponse(common.ErrNotFound, false)
		c.JSON(status, resp)
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Duration("timeout", cfg.Server.WriteTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Int("readiness_checks", len(svc.Checks)),
	)

	return router, nil
}
