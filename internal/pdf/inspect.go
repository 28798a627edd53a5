package pdf

import (
	"bytes"
	"context"
	"fmt"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/yourusername/rotate-pdf/internal/rotation"
)

// PageInfo は読み込んだPDFのページ構成を表します。
type PageInfo struct {
	Count     int   `json:"count"`
	Rotations []int `json:"rotations"` // ページごとの元の回転角度（index 0 が1ページ目）
}

// Original は指定ページ（1始まり）の元の回転角度を返します。
func (p *PageInfo) Original(page int) int {
	if p == nil || page < 1 || page > len(p.Rotations) {
		return 0
	}
	return p.Rotations[page-1]
}

// Probe はPDFを解析し、ページ数と各ページの回転角度を返します。
func (s *Service) Probe(ctx context.Context, data []byte) (*PageInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pctx, err := readContext(data)
	if err != nil {
		return nil, err
	}

	info := &PageInfo{
		Count:     pctx.PageCount,
		Rotations: make([]int, pctx.PageCount),
	}
	for i := 1; i <= pctx.PageCount; i++ {
		_, _, inherited, err := pctx.PageDict(i, false)
		if err != nil {
			return nil, newError(CodeUnsupportedPDF, fmt.Sprintf("%dページ目を読み取れませんでした。", i), err)
		}
		if inherited != nil {
			info.Rotations[i-1] = rotation.Normalize(inherited.Rotate)
		}
	}

	s.logger.Debug("probed document", "pages", info.Count)
	return info, nil
}

func readContext(data []byte) (*model.Context, error) {
	if len(data) == 0 {
		return nil, newError(CodeUnsupportedPDF, "PDFの内容が空です。", nil)
	}
	pctx, err := pdfapi.ReadValidateAndOptimize(bytes.NewReader(data), configuration())
	if err != nil {
		return nil, newError(CodeUnsupportedPDF, "PDFを読み込めませんでした。ファイルが破損していないか確認してください。", err)
	}
	if pctx.PageCount < 1 {
		return nil, newError(CodeUnsupportedPDF, "PDFにページがありません。", nil)
	}
	return pctx, nil
}
