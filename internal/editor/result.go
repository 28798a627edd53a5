package editor

import (
	"sync"
)

// ContentTypePDF は書き出し結果のMIMEタイプです。
const ContentTypePDF = "application/pdf"

// Result は書き出したPDFを表します。ダウンロード後に Cleanup を呼び出してください。
type Result struct {
	DocumentID     string      `json:"documentId"`
	OutputPath     string      `json:"outputPath"`
	OutputFilename string      `json:"outputFilename"`
	OutputSize     int64       `json:"outputSize"`
	ContentType    string      `json:"contentType"`
	Rotations      map[int]int `json:"rotations"`

	dir         string
	cleanupOnce sync.Once
	cleanupErr  error
}

// Cleanup は書き出し用の作業ディレクトリを削除します。複数回呼び出しても安全です。
func (r *Result) Cleanup() error {
	if r == nil {
		return nil
	}
	r.cleanupOnce.Do(func() {
		r.cleanupErr = removeDir(r.dir)
	})
	return r.cleanupErr
}
