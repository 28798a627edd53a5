package editor

import (
	"errors"
	"fmt"

	"github.com/yourusername/rotate-pdf/internal/pdf"
)

// エラーコード
const (
	CodeInvalidFileType  = "INVALID_FILE_TYPE"
	CodeLimitExceeded    = "LIMIT_EXCEEDED"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeLoadFailed       = "LOAD_FAILED"
	CodeExportFailed     = "EXPORT_FAILED"
	CodeRenderFailed     = "RENDER_FAILED"
	CodeNoDocument       = "NO_DOCUMENT"
	CodeNotReady         = "DOCUMENT_NOT_READY"
	CodeExportInProgress = "EXPORT_IN_PROGRESS"
)

// Kind はエラーの分類です。
type Kind string

const (
	KindValidation Kind = "validation"
	KindLoad       Kind = "load"
	KindExport     Kind = "export"
	KindState      Kind = "state"
)

// Error は利用者に表示するメッセージを持つエディタのエラーです。
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind はエラーコードに対応する分類を返します。
func (e *Error) Kind() Kind {
	switch e.Code {
	case CodeInvalidFileType, CodeLimitExceeded, CodeInvalidInput:
		return KindValidation
	case CodeLoadFailed, CodeRenderFailed:
		return KindLoad
	case CodeExportFailed:
		return KindExport
	default:
		return KindState
	}
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// wrapPDFError は pdf.Error のメッセージを引き継いでエディタのエラーに変換します。
func wrapPDFError(code, fallback string, err error) *Error {
	var pdfErr *pdf.Error
	if errors.As(err, &pdfErr) && pdfErr.Message != "" {
		return newError(code, pdfErr.Message, err)
	}
	return newError(code, fallback, err)
}

// ErrorInfo はスナップショットに含める表示用のエラー情報です。
type ErrorInfo struct {
	Code    string `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}
