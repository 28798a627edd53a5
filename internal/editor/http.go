package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/rotate-pdf/internal/rotation"
)

// Service は HTTP ハンドラーが利用するエディタの操作です。
type Service interface {
	LoadDocument(ctx context.Context, up Upload) (*Load, error)
	WaitLoad(ctx context.Context, load *Load) (Snapshot, error)
	RotatePage(page int, dir rotation.Direction) (PageState, error)
	Thumbnail(ctx context.Context, page int) ([]byte, string, error)
	Export(ctx context.Context) (*Result, error)
	Snapshot() Snapshot
}

// RegisterRoutes は /api 以下にエディタのエンドポイントを登録します。
func RegisterRoutes(group *gin.RouterGroup, svc Service, maxFileSize int64) {
	group.GET("/state", StateHandler(svc))
	group.POST("/document", LoadHandler(svc, maxFileSize))
	group.POST("/pages/:page/rotate", RotateHandler(svc))
	group.GET("/pages/:page/thumbnail", ThumbnailHandler(svc))
	group.POST("/export", ExportHandler(svc))
}

// StateHandler は GET /api/state のハンドラーを返します。
func StateHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, svc.Snapshot())
	}
}

// multipartOverhead はファイル本体以外のマルチパート部分に許容するバイト数です。
const multipartOverhead = 1 << 20

// LoadHandler は POST /api/document のハンドラーを返します。
// ファイル選択とドラッグ&ドロップのどちらもこのエンドポイントに送信します。
func LoadHandler(svc Service, maxFileSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxFileSize > 0 {
			limit := maxFileSize + multipartOverhead
			if c.Request.ContentLength > limit {
				respondWithError(c, newError(CodeLimitExceeded, "ファイルサイズが上限を超えています。", nil))
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		file, err := c.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondWithError(c, newError(CodeLimitExceeded, "ファイルサイズが上限を超えています。", err))
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    CodeInvalidInput,
				"message": "multipart/form-data でPDFファイルを送信してください。",
			})
			return
		}
		if maxFileSize > 0 && file.Size > maxFileSize {
			respondWithError(c, newError(CodeLimitExceeded, "ファイルサイズが上限を超えています。", nil))
			return
		}

		src, err := file.Open()
		if err != nil {
			respondWithError(c, fmt.Errorf("アップロードファイルのオープンに失敗しました: %w", err))
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			respondWithError(c, fmt.Errorf("アップロードファイルの読み込みに失敗しました: %w", err))
			return
		}

		load, err := svc.LoadDocument(c.Request.Context(), Upload{
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Data:        data,
			Source:      ParseSource(c.PostForm("source")),
		})
		if err != nil {
			respondWithError(c, err)
			return
		}

		snap, err := svc.WaitLoad(c.Request.Context(), load)
		if err != nil {
			respondWithError(c, err)
			return
		}
		if err := load.Err(); err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

type rotateRequest struct {
	Direction string `json:"direction" form:"direction"`
}

// RotateHandler は POST /api/pages/:page/rotate のハンドラーを返します。
func RotateHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := parsePage(c)
		if err != nil {
			respondWithError(c, err)
			return
		}

		var req rotateRequest
		if err := c.ShouldBind(&req); err != nil || req.Direction == "" {
			req.Direction = c.Query("direction")
		}
		dir, err := rotation.ParseDirection(req.Direction)
		if err != nil {
			respondWithError(c, newError(CodeInvalidInput, "direction には left または right を指定してください。", err))
			return
		}

		state, err := svc.RotatePage(page, dir)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// ThumbnailHandler は GET /api/pages/:page/thumbnail のハンドラーを返します。
func ThumbnailHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := parsePage(c)
		if err != nil {
			respondWithError(c, err)
			return
		}

		data, contentType, err := svc.Thumbnail(c.Request.Context(), page)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, contentType, data)
	}
}

// ExportHandler は POST /api/export のハンドラーを返します。
// 書き出したPDFを添付ファイルとして返し、送信後に一時ファイルを削除します。
func ExportHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.Export(c.Request.Context())
		if err != nil {
			respondWithError(c, err)
			return
		}
		defer result.Cleanup()

		if err := streamResult(c, result); err != nil {
			respondWithError(c, err)
		}
	}
}

func parsePage(c *gin.Context) (int, error) {
	page, err := strconv.Atoi(strings.TrimSpace(c.Param("page")))
	if err != nil {
		return 0, newError(CodeInvalidInput, "ページ番号は整数で指定してください。", err)
	}
	return page, nil
}

func respondWithError(c *gin.Context, err error) {
	var editorErr *Error
	switch {
	case errors.As(err, &editorErr):
		c.JSON(statusFor(editorErr.Code), gin.H{
			"code":    editorErr.Code,
			"message": editorErr.Message,
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{
			"code":    "REQUEST_CANCELED",
			"message": "リクエストがキャンセルされました。",
		})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "内部でエラーが発生しました。",
		})
	}
}

func statusFor(code string) int {
	switch code {
	case CodeLimitExceeded:
		return http.StatusRequestEntityTooLarge
	case CodeNoDocument:
		return http.StatusNotFound
	case CodeNotReady, CodeExportInProgress:
		return http.StatusConflict
	case CodeLoadFailed, CodeExportFailed, CodeRenderFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func streamResult(c *gin.Context, result *Result) error {
	file, err := os.Open(result.OutputPath)
	if err != nil {
		return fmt.Errorf("書き出し結果の読み込みに失敗しました: %w", err)
	}
	defer file.Close()

	encodedName := url.PathEscape(result.OutputFilename)
	c.Header("Content-Type", result.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", asciiFilename(result.OutputFilename), encodedName))
	c.Header("Cache-Control", "no-store")
	c.Header("X-Document-Id", result.DocumentID)
	c.DataFromReader(http.StatusOK, result.OutputSize, result.ContentType, file, nil)
	return nil
}

// asciiFilename は filename パラメータ用に非ASCII文字と引用符を置き換えます。
func asciiFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('_')
		case r < 0x20 || r > 0x7e:
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
