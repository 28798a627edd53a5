// Package ui はブラウザで操作する画面を埋め込みで配信します。
package ui

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static/index.html
var assets embed.FS

// IndexHandler は GET / で画面を返すハンドラーです。
func IndexHandler() gin.HandlerFunc {
	page, err := assets.ReadFile("static/index.html")
	return func(c *gin.Context) {
		if err != nil {
			_ = c.Error(err)
			c.String(http.StatusInternalServerError, "画面の読み込みに失敗しました。")
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	}
}
