package editor

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	mimePDF         = "application/pdf"
	mimeOctetStream = "application/octet-stream"
)

// Source はファイルの取り込み経路です。どちらの経路も同じ検証を通ります。
type Source string

const (
	SourcePicker Source = "picker"
	SourceDrop   Source = "drop"
)

// ParseSource は経路名を解釈します。不明な値はファイル選択として扱います。
func ParseSource(raw string) Source {
	if Source(strings.ToLower(strings.TrimSpace(raw))) == SourceDrop {
		return SourceDrop
	}
	return SourcePicker
}

// Upload は利用者が選択したファイルです。
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	Source      Source
}

// IsPDF は MIME タイプまたは拡張子がPDFを示すかどうかを返します。
// 宣言されたタイプが空か application/octet-stream の場合のみ内容から判定します。
func (u Upload) IsPDF() bool {
	if strings.EqualFold(filepath.Ext(u.Filename), ".pdf") {
		return true
	}
	declared := mediaType(u.ContentType)
	if declared == mimePDF {
		return true
	}
	if declared == "" || declared == mimeOctetStream {
		return mimetype.Detect(u.Data).Is(mimePDF)
	}
	return false
}

func mediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return mt
}

// Document は読み込んだPDFの元データへの参照です。生成後は変更しません。
type Document struct {
	ID          string
	Name        string
	ContentType string
	Size        int64

	data []byte
	path string // 描画用に保存した複製
	ws   workspace
}

// Bytes は元のPDFデータを返します。呼び出し側で変更しないでください。
func (d *Document) Bytes() []byte {
	return d.data
}

// Info は表示用の文書情報を返します。
func (d *Document) Info() *DocumentInfo {
	if d == nil {
		return nil
	}
	return &DocumentInfo{
		ID:          d.ID,
		Name:        d.Name,
		ContentType: d.ContentType,
		Size:        d.Size,
	}
}

func (d *Document) release() error {
	if d == nil {
		return nil
	}
	return removeDir(d.ws.dir)
}

// DocumentInfo はスナップショットに含める文書情報です。
type DocumentInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// baseName はブラウザが送るパス付きのファイル名からファイル名部分のみを取り出します。
func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "document.pdf"
	}
	return name
}
