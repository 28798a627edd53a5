// Package logging は slog のロガーをレベルと出力形式の設定から生成します。
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Level はログの重要度です。
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Validate はレベルが既知の値か検証します。
func (l Level) Validate() error {
	switch l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return nil
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l)
	}
}

// ToSlogLevel は slog.Level に変換します。未知の値は Info 扱いです。
func (l Level) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Format はログの出力形式です。
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Validate は出力形式が既知の値か検証します。
func (f Format) Validate() error {
	switch f {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", f)
	}
}

// Config はロガーの設定です。
type Config struct {
	Level  Level
	Format Format
}

// Validate はレベルと出力形式を検証します。
func (c Config) Validate() error {
	if err := c.Level.Validate(); err != nil {
		return err
	}
	return c.Format.Validate()
}

// New は標準出力に書き込むロガーを生成します。
func New(cfg Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter は指定した出力先に書き込むロガーを生成します。
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.Level.ToSlogLevel(),
	}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
