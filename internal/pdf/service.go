// Package pdf はPDFのページ数取得・回転の適用・サムネイル描画を提供します。
//
// 使用ライブラリ:
//   - pdfcpu: PDFの解析と再シリアライズ
//   - document-context: ImageMagick によるページ画像の生成
package pdf

import (
	"log/slog"
	"sync"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Options は Service の設定です。
type Options struct {
	ThumbnailDPI      int    // サムネイル描画時の解像度
	ThumbnailFormat   string // png または jpg
	RenderConcurrency int64  // 同時に実行する描画プロセス数の上限
}

var (
	setupOnce  sync.Once
	baseConfig *model.Configuration
)

// Setup はプロセス全体で共有するライブラリ設定を一度だけ初期化します。
// 以降、設定は変更しません。
func Setup() {
	setupOnce.Do(func() {
		// pdfcpu がユーザー設定ディレクトリを作成しないようにする
		pdfapi.DisableConfigDir()
		conf := model.NewDefaultConfiguration()
		conf.ValidationMode = model.ValidationRelaxed
		baseConfig = conf
	})
}

// configuration は呼び出しごとに共有設定のコピーを返します。
// pdfcpu は処理中に設定を書き換えるため、共有インスタンスを直接渡しません。
func configuration() *model.Configuration {
	Setup()
	conf := *baseConfig
	return &conf
}

// Service はPDFの外部ライブラリ呼び出しをまとめます。
type Service struct {
	opts   Options
	sem    *semaphore.Weighted
	group  singleflight.Group
	logger *slog.Logger
}

// NewService は Service を作成します。
func NewService(opts Options, logger *slog.Logger) *Service {
	Setup()
	if opts.ThumbnailDPI <= 0 {
		opts.ThumbnailDPI = defaultThumbnailDPI
	}
	if opts.ThumbnailFormat == "" {
		opts.ThumbnailFormat = defaultThumbnailFormat
	}
	if opts.RenderConcurrency <= 0 {
		opts.RenderConcurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		opts:   opts,
		sem:    semaphore.NewWeighted(opts.RenderConcurrency),
		logger: logger.With("component", "pdf"),
	}
}
