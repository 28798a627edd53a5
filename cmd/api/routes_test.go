package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/rotate-pdf/internal/config"
	"github.com/yourusername/rotate-pdf/internal/editor"
	"github.com/yourusername/rotate-pdf/internal/logging"
	"github.com/yourusername/rotate-pdf/internal/pdf"
)

func newTestServer(t *testing.T) (*gin.Engine, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		CORSAllowedOrigins: "http://localhost:3000",
		MaxFileSize:        1 << 20,
		MaxPages:           10,
		WorkDir:            t.TempDir(),
	}
	var logs bytes.Buffer
	logger := logging.NewWithWriter(logging.Config{Level: logging.LevelDebug, Format: logging.FormatText}, &logs)

	svc := pdf.NewService(pdf.Options{}, logger)
	ed, err := editor.New(svc, svc, editor.Options{WorkDir: cfg.WorkDir, MaxFileSize: cfg.MaxFileSize, MaxPages: cfg.MaxPages}, logger)
	if err != nil {
		t.Fatalf("failed to create editor: %v", err)
	}
	t.Cleanup(func() { _ = ed.Close() })

	return newRouter(cfg, ed, logger), &logs
}

func TestHealth(t *testing.T) {
	router, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected status field: %v", payload)
	}
}

func TestRoutesServeIndexAndState(t *testing.T) {
	router, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("index: unexpected status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("state: unexpected status: %d", rec.Code)
	}
	var snap editor.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to parse state: %v", err)
	}
	if snap.Document != nil || snap.NumPages != 0 {
		t.Fatalf("expected empty editor, got %+v", snap)
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	router, logs := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/export", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !bytes.Contains(logs.Bytes(), []byte("level=WARN")) || !bytes.Contains(logs.Bytes(), []byte("status=404")) {
		t.Fatalf("expected warn request log, got %s", logs.String())
	}
}
