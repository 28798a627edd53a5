package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/rotate-pdf/internal/config"
	"github.com/yourusername/rotate-pdf/internal/editor"
	"github.com/yourusername/rotate-pdf/internal/ui"
)

const maxMultipartMemory = 8 << 20

// newRouter はミドルウェアとルーティングを設定した gin.Engine を返します。
func newRouter(cfg *config.Config, svc editor.Service, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())

	// 画面を別オリジンで開発する場合に備えて CORS を許可する
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "X-Document-Id"}
	router.Use(cors.New(corsConfig))

	// 上限を超える部分は一時ファイルに退避される
	router.MaxMultipartMemory = maxMultipartMemory

	setupRoutes(router, cfg, svc)
	return router
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "rotate-pdf",
		"version": "0.1.0",
	})
}

// setupRoutes は画面と API のルーティングを登録します。
func setupRoutes(router *gin.Engine, cfg *config.Config, svc editor.Service) {
	router.GET("/health", handleHealth)
	router.GET("/", ui.IndexHandler())

	api := router.Group("/api")
	editor.RegisterRoutes(api, svc, cfg.MaxFileSize)
}

// requestLogger は gin のリクエストを slog に記録するミドルウェアです。
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", attrs...)
		default:
			logger.Debug("request", attrs...)
		}
	}
}
