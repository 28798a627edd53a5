package pdf

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/yourusername/rotate-pdf/internal/rotation"
)

// ApplyRotations は元のPDFバイト列を開き直し、rotations に含まれるページの
// /Rotate を絶対値で設定した新しいPDFを返します。
// rotations に含まれないページは元の回転を保持します。
func (s *Service) ApplyRotations(ctx context.Context, data []byte, rotations map[int]int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pctx, err := readContext(data)
	if err != nil {
		return nil, err
	}

	pages := make([]int, 0, len(rotations))
	for p := range rotations {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	for _, page := range pages {
		deg := rotations[page]
		if page < 1 || page > pctx.PageCount {
			return nil, newError(CodeInvalidInput, fmt.Sprintf("ページ番号 %d はページ数 %d の範囲外です。", page, pctx.PageCount), nil)
		}
		if !rotation.IsCanonical(deg) {
			return nil, newError(CodeInvalidInput, fmt.Sprintf("回転角度 %d は 0/90/180/270 のいずれかで指定してください。", deg), nil)
		}

		dict, _, _, err := pctx.PageDict(page, false)
		if err != nil || dict == nil {
			return nil, newError(CodeUnsupportedPDF, fmt.Sprintf("%dページ目の回転に失敗しました。", page), err)
		}
		dict.Update("Rotate", types.Integer(deg))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdfapi.WriteContext(pctx, &buf); err != nil {
		return nil, newError(CodeUnsupportedPDF, "PDFの書き出しに失敗しました。", err)
	}

	s.logger.Debug("applied rotations", "pages", len(pages), "bytes", buf.Len())
	return buf.Bytes(), nil
}
