// Package main はPDFページ回転ツールのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/rotate-pdf/internal/config"
	"github.com/yourusername/rotate-pdf/internal/editor"
	"github.com/yourusername/rotate-pdf/internal/logging"
	"github.com/yourusername/rotate-pdf/internal/pdf"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// PDFライブラリの初期化はプロセスで一度だけ行う
	pdf.Setup()
	pdfService := pdf.NewService(pdf.Options{
		ThumbnailDPI:      cfg.ThumbnailDPI,
		ThumbnailFormat:   cfg.ThumbnailFormat,
		RenderConcurrency: int64(cfg.RenderConcurrency),
	}, logger)

	ed, err := editor.New(pdfService, pdfService, editor.Options{
		WorkDir:      cfg.WorkDir,
		MaxFileSize:  cfg.MaxFileSize,
		MaxPages:     cfg.MaxPages,
		ResultExpire: cfg.ResultExpire(),
	}, logger)
	if err != nil {
		logger.Error("failed to create editor", "error", err)
		os.Exit(1)
	}

	router := newRouter(cfg, ed, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownError := make(chan error, 1)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		logger.Info("shutting down server", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownError <- srv.Shutdown(ctx)
	}()

	logger.Info("starting server", "addr", srv.Addr, "mode", cfg.GinMode, "workDir", cfg.WorkDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	if err := <-shutdownError; err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := ed.Close(); err != nil {
		logger.Warn("failed to remove document workspace", "error", err)
	}
	logger.Info("server stopped")
}
