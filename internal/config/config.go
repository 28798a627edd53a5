// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"

	"github.com/yourusername/rotate-pdf/internal/logging"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // サーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// ファイル制限
	MaxFileSize         int64 // 単一ファイルの最大サイズ（バイト）
	MaxPages            int   // 単一ファイルの最大ページ数
	ResultExpireMinutes int   // 書き出し結果の保持期間（分）

	// 作業ディレクトリ
	WorkDir string

	// サムネイル設定
	ThumbnailDPI      int    // サムネイル描画の解像度
	ThumbnailFormat   string // png または jpeg
	RenderConcurrency int    // 同時に描画するページ数の上限

	// ログ設定
	Logging logging.Config
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	maxFileSize, err := getEnvAsSize("MAX_FILE_SIZE", 100*units.MiB)
	if err != nil {
		return nil, err
	}

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "3001"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		// ファイル制限
		MaxFileSize:         maxFileSize,
		MaxPages:            getEnvAsInt("MAX_PAGES", 200),
		ResultExpireMinutes: getEnvAsInt("RESULT_EXPIRE_MINUTES", 10),

		WorkDir: getEnv("WORK_DIR", filepath.Join(os.TempDir(), "rotate-pdf")),

		// サムネイル設定
		ThumbnailDPI:      getEnvAsInt("THUMBNAIL_DPI", 36),
		ThumbnailFormat:   strings.ToLower(getEnv("THUMBNAIL_FORMAT", "png")),
		RenderConcurrency: getEnvAsInt("RENDER_CONCURRENCY", 4),

		// ログ設定
		Logging: logging.Config{
			Level:  logging.Level(strings.ToLower(getEnv("LOG_LEVEL", string(logging.LevelInfo)))),
			Format: logging.Format(strings.ToLower(getEnv("LOG_FORMAT", string(logging.FormatText)))),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("MAX_PAGES must be positive")
	}
	if c.ResultExpireMinutes <= 0 {
		return fmt.Errorf("RESULT_EXPIRE_MINUTES must be positive")
	}
	if c.WorkDir == "" {
		return fmt.Errorf("WORK_DIR is required")
	}
	if c.ThumbnailDPI <= 0 {
		return fmt.Errorf("THUMBNAIL_DPI must be positive")
	}
	switch c.ThumbnailFormat {
	case "png", "jpeg", "jpg":
	default:
		return fmt.Errorf("THUMBNAIL_FORMAT must be png or jpeg: %s", c.ThumbnailFormat)
	}
	if c.RenderConcurrency <= 0 {
		return fmt.Errorf("RENDER_CONCURRENCY must be positive")
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

// ResultExpire は書き出し結果の保持期間を返します。
func (c *Config) ResultExpire() time.Duration {
	return time.Duration(c.ResultExpireMinutes) * time.Minute
}

// AllowedOrigins はカンマ区切りのCORS許可オリジンを分割して返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSize は "100MB" や "104857600" のようなサイズ表記をバイト数として取得します。
func getEnvAsSize(key string, defaultValue int64) (int64, error) {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := units.RAMInBytes(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid size: %w", key, err)
	}
	return value, nil
}
