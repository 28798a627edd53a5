package config

import (
	"testing"
	"time"

	"github.com/docker/go-units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/rotate-pdf/internal/logging"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "GIN_MODE", "CORS_ALLOWED_ORIGINS", "MAX_FILE_SIZE", "MAX_PAGES",
		"WORK_DIR", "RESULT_EXPIRE_MINUTES", "THUMBNAIL_DPI", "THUMBNAIL_FORMAT",
		"RENDER_CONCURRENCY", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, int64(100*units.MiB), cfg.MaxFileSize)
	assert.Equal(t, 200, cfg.MaxPages)
	assert.Equal(t, 10*time.Minute, cfg.ResultExpire())
	assert.Equal(t, 36, cfg.ThumbnailDPI)
	assert.Equal(t, "png", cfg.ThumbnailFormat)
	assert.Equal(t, 4, cfg.RenderConcurrency)
	assert.Equal(t, logging.LevelInfo, cfg.Logging.Level)
	assert.Equal(t, logging.FormatText, cfg.Logging.Format)
	assert.NotEmpty(t, cfg.WorkDir)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_FILE_SIZE", "20MB")
	t.Setenv("THUMBNAIL_FORMAT", "JPEG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, int64(20*units.MiB), cfg.MaxFileSize)
	assert.Equal(t, "jpeg", cfg.ThumbnailFormat)
	assert.Equal(t, logging.FormatJSON, cfg.Logging.Format)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"MAX_FILE_SIZE":      "lots",
		"THUMBNAIL_FORMAT":   "gif",
		"LOG_LEVEL":          "verbose",
		"MAX_PAGES":          "-1",
		"RENDER_CONCURRENCY": "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
