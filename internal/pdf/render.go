package pdf

import (
	"context"
	"fmt"

	dcconfig "github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"
)

const (
	defaultThumbnailDPI    = 36
	defaultThumbnailFormat = "png"
)

type thumbnail struct {
	data        []byte
	contentType string
}

// RenderThumbnail は path のPDFの指定ページを rotation 度回転した画像として描画します。
// 表示専用であり、書き出し結果には使用しません。
func (s *Service) RenderThumbnail(ctx context.Context, path string, page, rotation int) ([]byte, string, error) {
	if page < 1 {
		return nil, "", newError(CodeInvalidInput, "ページ番号は1以上で指定してください。", nil)
	}

	// 共有される描画は最初の呼び出し元のキャンセルに影響されない。
	// 各呼び出し元は自身の ctx が終了した時点で待機をやめる。
	key := fmt.Sprintf("%s#%d@%d", path, page, rotation)
	ch := s.group.DoChan(key, func() (any, error) {
		if err := s.sem.Acquire(context.WithoutCancel(ctx), 1); err != nil {
			return nil, err
		}
		defer s.sem.Release(1)
		return s.render(path, page, rotation)
	})

	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, "", res.Err
		}
		if res.Shared {
			s.logger.Debug("thumbnail render shared", "page", page, "rotation", rotation)
		}
		thumb := res.Val.(*thumbnail)
		return thumb.data, thumb.contentType, nil
	}
}

func (s *Service) render(path string, page, rotation int) (*thumbnail, error) {
	format, err := document.ParseImageFormat(s.opts.ThumbnailFormat)
	if err != nil {
		return nil, newError(CodeRenderFailed, "サムネイルの形式が不正です。", err)
	}
	contentType, err := format.MimeType()
	if err != nil {
		return nil, newError(CodeRenderFailed, "サムネイルの形式が不正です。", err)
	}

	doc, err := document.OpenPDF(path)
	if err != nil {
		return nil, newError(CodeRenderFailed, "PDFを開けませんでした。", err)
	}
	defer doc.Close()

	p, err := doc.ExtractPage(page)
	if err != nil {
		return nil, newError(CodeRenderFailed, fmt.Sprintf("%dページ目を取得できませんでした。", page), err)
	}

	renderer, err := image.NewImageMagickRenderer(s.imageConfig(format, rotation))
	if err != nil {
		return nil, newError(CodeRenderFailed, "描画エンジンを初期化できませんでした。", err)
	}

	data, err := p.ToImage(renderer, nil)
	if err != nil {
		return nil, newError(CodeRenderFailed, fmt.Sprintf("%dページ目の描画に失敗しました。", page), err)
	}
	return &thumbnail{data: data, contentType: contentType}, nil
}

func (s *Service) imageConfig(format document.ImageFormat, rotation int) dcconfig.ImageConfig {
	cfg := dcconfig.ImageConfig{
		Format:  string(format),
		DPI:     s.opts.ThumbnailDPI,
		Options: map[string]any{"background": "white"},
	}
	if format == document.JPEG {
		cfg.Quality = 85
	}
	if rotation != 0 {
		cfg.Options["rotation"] = rotation
	}
	return cfg
}
