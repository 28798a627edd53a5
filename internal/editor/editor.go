// Package editor はページ単位の回転エディタを提供します。
//
// エディタは読み込んだ文書への参照と回転マップを所有し、ファイルの取り込み、
// サムネイル描画、書き出しを仲介します。
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/docker/go-units"

	"github.com/yourusername/rotate-pdf/internal/pdf"
	"github.com/yourusername/rotate-pdf/internal/rotation"
)

const (
	// OutputPrefix は書き出しファイル名の接頭辞です。
	OutputPrefix = "rotated-"

	sourceFilename      = "source.pdf"
	defaultResultExpire = 10 * time.Minute
)

// Renderer はページ数の取得とページ画像の描画を担います。
type Renderer interface {
	Probe(ctx context.Context, data []byte) (*pdf.PageInfo, error)
	RenderThumbnail(ctx context.Context, path string, page, rotation int) ([]byte, string, error)
}

// Serializer は回転の適用とPDFの再シリアライズを担います。
type Serializer interface {
	ApplyRotations(ctx context.Context, data []byte, rotations map[int]int) ([]byte, error)
}

// Options はエディタの設定です。
type Options struct {
	WorkDir      string        // 一時ファイルの保存先
	MaxFileSize  int64         // 0 の場合は無制限
	MaxPages     int           // 0 の場合は無制限
	ResultExpire time.Duration // 取得されなかった書き出し結果を削除するまでの時間
}

// Load は LoadDocument で開始した読み込みを表します。
type Load struct {
	Generation uint64
	DocumentID string
	done       chan struct{}
	err        *Error
}

// Done は読み込み処理が完了すると閉じられるチャネルを返します。
func (l *Load) Done() <-chan struct{} {
	return l.done
}

// Err は読み込みが失敗した場合にそのエラーを返します。Done が閉じられた後に呼び出してください。
func (l *Load) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// Editor は回転エディタです。複数のリクエストから同時に呼び出せます。
type Editor struct {
	renderer   Renderer
	serializer Serializer
	opts       Options
	logger     *slog.Logger

	mu         sync.Mutex
	doc        *Document
	rotations  rotation.Map
	generation uint64
	loading    bool
	pages      *pdf.PageInfo
	exporting  bool
	lastErr    *Error
}

// New はエディタを作成します。
func New(renderer Renderer, serializer Serializer, opts Options, logger *slog.Logger) (*Editor, error) {
	if renderer == nil {
		return nil, fmt.Errorf("renderer is nil")
	}
	if serializer == nil {
		return nil, fmt.Errorf("serializer is nil")
	}
	if opts.WorkDir == "" {
		opts.WorkDir = filepath.Join(os.TempDir(), "rotate-pdf")
	}
	if opts.ResultExpire <= 0 {
		opts.ResultExpire = defaultResultExpire
	}
	if err := os.MkdirAll(opts.WorkDir, 0o750); err != nil {
		return nil, fmt.Errorf("作業ディレクトリの作成に失敗しました: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		renderer:   renderer,
		serializer: serializer,
		opts:       opts,
		logger:     logger.With("component", "editor"),
	}, nil
}

// LoadDocument は新しい文書を読み込みます。
//
// PDF以外のファイルは検証エラーとなり、現在の文書と回転マップは変更されません。
// 検証に通った場合は文書を置き換えて回転マップを空にし、ページ数の取得を非同期に開始します。
// 後から開始された読み込みが常に優先され、古い読み込みの結果は破棄されます。
func (e *Editor) LoadDocument(ctx context.Context, up Upload) (*Load, error) {
	if !up.IsPDF() {
		return nil, e.fail(newError(CodeInvalidFileType, "有効なPDFファイルを選択してください。", nil))
	}
	if e.opts.MaxFileSize > 0 && int64(len(up.Data)) > e.opts.MaxFileSize {
		return nil, e.fail(newError(CodeLimitExceeded,
			fmt.Sprintf("ファイルサイズが上限（%s）を超えています。", units.BytesSize(float64(e.opts.MaxFileSize))), nil))
	}

	doc, err := e.newDocument(up)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	previous := e.doc
	e.doc = doc
	e.rotations.Reset()
	e.generation++
	gen := e.generation
	e.loading = true
	e.pages = nil
	e.lastErr = nil
	e.mu.Unlock()

	if err := previous.release(); err != nil {
		e.logger.Warn("failed to release previous document", "document", previous.ID, "error", err)
	}

	e.logger.Info("document selected",
		"document", doc.ID,
		"name", doc.Name,
		"size", units.HumanSize(float64(doc.Size)),
		"source", up.Source,
		"generation", gen,
	)

	load := &Load{Generation: gen, DocumentID: doc.ID, done: make(chan struct{})}
	go e.probe(context.WithoutCancel(ctx), load, doc)
	return load, nil
}

func (e *Editor) newDocument(up Upload) (*Document, error) {
	ws, err := createWorkspace(e.opts.WorkDir)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(ws.inDir, sourceFilename)
	if err := os.WriteFile(path, up.Data, 0o640); err != nil {
		_ = removeDir(ws.dir)
		return nil, fmt.Errorf("PDFの一時保存に失敗しました: %w", err)
	}

	contentType := mediaType(up.ContentType)
	if contentType == "" || contentType == mimeOctetStream {
		contentType = mimePDF
	}

	return &Document{
		ID:          ws.id,
		Name:        baseName(up.Filename),
		ContentType: contentType,
		Size:        int64(len(up.Data)),
		data:        up.Data,
		path:        path,
		ws:          ws,
	}, nil
}

func (e *Editor) probe(ctx context.Context, load *Load, doc *Document) {
	defer close(load.done)

	info, err := e.renderer.Probe(ctx, doc.Bytes())
	var loadErr *Error
	switch {
	case err != nil:
		loadErr = wrapPDFError(CodeLoadFailed, "PDFの読み込みに失敗しました。もう一度お試しください。", err)
	case e.opts.MaxPages > 0 && info.Count > e.opts.MaxPages:
		loadErr = newError(CodeLoadFailed, fmt.Sprintf("ページ数が上限（%dページ）を超えています。", e.opts.MaxPages), nil)
	}
	load.err = loadErr

	e.mu.Lock()
	defer e.mu.Unlock()

	if load.Generation != e.generation {
		e.logger.Debug("discarding stale load", "generation", load.Generation, "current", e.generation)
		return
	}

	e.loading = false
	if loadErr != nil {
		e.lastErr = loadErr
		e.logger.Warn("document load failed", "document", doc.ID, "error", loadErr)
		return
	}
	e.pages = info
	e.logger.Info("document loaded", "document", doc.ID, "pages", info.Count)
}

// WaitLoad は load の読み込みが完了するまで待ち、その時点のスナップショットを返します。
func (e *Editor) WaitLoad(ctx context.Context, load *Load) (Snapshot, error) {
	select {
	case <-load.Done():
		return e.Snapshot(), nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// RotatePage は指定ページ（1始まり）の回転量に ±90 度を加算します。
// 値は編集中には丸めず、書き出し時に正規化します。
func (e *Editor) RotatePage(page int, dir rotation.Direction) (PageState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkPageLocked(page); err != nil {
		return PageState{}, err
	}

	e.rotations.Add(page, dir.Delta())
	e.lastErr = nil
	return e.pageStateLocked(page), nil
}

// Thumbnail は書き出し後と同じ向きで指定ページを描画します。
func (e *Editor) Thumbnail(ctx context.Context, page int) ([]byte, string, error) {
	e.mu.Lock()
	if err := e.checkPageLocked(page); err != nil {
		e.mu.Unlock()
		return nil, "", err
	}
	doc := e.doc
	angle := e.displayRotationLocked(page)
	e.mu.Unlock()

	data, contentType, err := e.renderer.RenderThumbnail(ctx, doc.path, page, angle)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, "", err
		}
		return nil, "", e.failFor(doc, wrapPDFError(CodeRenderFailed, fmt.Sprintf("%dページ目のプレビューを表示できませんでした。", page), err))
	}
	return data, contentType, nil
}

// displayRotationLocked は描画時に追加で回転させる角度を返します。
// 回転マップに含まれるページは書き出し時に絶対値で上書きされるため、元の回転との差分を使います。
func (e *Editor) displayRotationLocked(page int) int {
	if !e.rotations.Has(page) {
		return 0
	}
	return rotation.Normalize(e.rotations.Normalized(page) - e.pages.Original(page))
}

func (e *Editor) checkPageLocked(page int) *Error {
	if e.doc == nil {
		return newError(CodeNoDocument, "PDFファイルが読み込まれていません。", nil)
	}
	if e.loading {
		return newError(CodeNotReady, "PDFを読み込み中です。しばらくお待ちください。", nil)
	}
	if e.pages == nil {
		return newError(CodeNotReady, "PDFの読み込みに失敗しています。ファイルを選択し直してください。", nil)
	}
	if page < 1 || page > e.pages.Count {
		return newError(CodeInvalidInput, fmt.Sprintf("ページ番号は 1〜%d の範囲で指定してください。", e.pages.Count), nil)
	}
	return nil
}

// Export は元のPDFデータに回転マップを適用したPDFを書き出します。
//
// 回転マップに含まれるページのみ絶対角度を設定し、それ以外のページは変更しません。
// 書き出し中の再呼び出しは EXPORT_IN_PROGRESS で拒否します。
// 失敗しても回転マップは保持されます。一度開始した書き出しはキャンセルされません。
func (e *Editor) Export(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()
		return nil, newError(CodeNoDocument, "PDFファイルが読み込まれていません。", nil)
	}
	if e.exporting {
		e.mu.Unlock()
		return nil, newError(CodeExportInProgress, "処理中です。しばらくお待ちください。", nil)
	}
	e.exporting = true
	doc := e.doc
	rotations := e.rotations.Absolute()
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.exporting = false
		e.mu.Unlock()
	}()

	// 開始した書き出しは接続が切れても最後まで実行する
	result, err := e.export(context.WithoutCancel(ctx), doc, rotations)
	if err != nil {
		return nil, e.failFor(doc, wrapPDFError(CodeExportFailed, "PDFの処理に失敗しました。もう一度お試しください。", err))
	}

	e.mu.Lock()
	if e.doc == doc {
		e.lastErr = nil
	}
	e.mu.Unlock()

	e.logger.Info("document exported",
		"document", doc.ID,
		"rotated_pages", len(rotations),
		"output", result.OutputFilename,
		"size", units.HumanSize(float64(result.OutputSize)),
	)
	return result, nil
}

func (e *Editor) export(ctx context.Context, doc *Document, rotations map[int]int) (*Result, error) {
	data, err := e.serializer.ApplyRotations(ctx, doc.Bytes(), rotations)
	if err != nil {
		return nil, err
	}

	ws, err := createWorkspace(e.opts.WorkDir)
	if err != nil {
		return nil, err
	}

	filename := OutputPrefix + doc.Name
	outputPath := filepath.Join(ws.outDir, filename)
	if err := os.WriteFile(outputPath, data, 0o640); err != nil {
		_ = removeDir(ws.dir)
		return nil, fmt.Errorf("書き出しファイルの保存に失敗しました: %w", err)
	}

	result := &Result{
		DocumentID:     doc.ID,
		OutputPath:     outputPath,
		OutputFilename: filename,
		OutputSize:     int64(len(data)),
		ContentType:    ContentTypePDF,
		Rotations:      rotations,
		dir:            ws.dir,
	}

	// ダウンロードされなかった場合に備えて期限後に削除する
	time.AfterFunc(e.opts.ResultExpire, func() {
		_ = result.Cleanup()
	})

	return result, nil
}

// Snapshot は現在の表示状態を返します。
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Document:  e.doc.Info(),
		Loading:   e.loading,
		Exporting: e.exporting,
		Rotated:   e.rotations.Len(),
		Pages:     []PageState{},
	}
	if e.lastErr != nil {
		snap.Error = &ErrorInfo{
			Code:    e.lastErr.Code,
			Kind:    e.lastErr.Kind(),
			Message: e.lastErr.Message,
		}
	}
	if e.pages != nil {
		snap.NumPages = e.pages.Count
		snap.Pages = make([]PageState, 0, e.pages.Count)
		for p := 1; p <= e.pages.Count; p++ {
			snap.Pages = append(snap.Pages, e.pageStateLocked(p))
		}
	}
	return snap
}

func (e *Editor) pageStateLocked(page int) PageState {
	state := PageState{
		Page:     page,
		Original: e.pages.Original(page),
		Rotation: e.rotations.Get(page),
		Rotated:  e.rotations.Has(page),
	}
	state.Effective = state.Original
	if state.Rotated {
		state.Effective = e.rotations.Normalized(page)
	}
	return state
}

// Close は現在の文書の一時ファイルを削除します。
func (e *Editor) Close() error {
	e.mu.Lock()
	doc := e.doc
	e.doc = nil
	e.pages = nil
	e.rotations.Reset()
	e.generation++
	e.mu.Unlock()
	return doc.release()
}

// fail は検証エラーを表示用エラーとして記録します。文書と回転マップは変更しません。
func (e *Editor) fail(err *Error) *Error {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
	e.logger.Info("rejected", "code", err.Code)
	return err
}

// failFor は doc が現在の文書である場合のみエラーを記録します。
func (e *Editor) failFor(doc *Document, err *Error) *Error {
	e.mu.Lock()
	if e.doc == doc {
		e.lastErr = err
	}
	e.mu.Unlock()
	e.logger.Warn("operation failed", "document", doc.ID, "code", err.Code, "error", err.Err)
	return err
}
