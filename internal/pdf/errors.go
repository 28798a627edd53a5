package pdf

import "fmt"

// エラーコード
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeUnsupportedPDF = "UNSUPPORTED_PDF"
	CodeRenderFailed   = "RENDER_FAILED"
)

// Error はPDF処理で発生した、利用者に提示可能なエラーです。
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

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}
