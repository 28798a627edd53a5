package editor

// Snapshot はエディタの表示状態です。読み込みのたびに再計算され、永続化しません。
type Snapshot struct {
	Document  *DocumentInfo `json:"document,omitempty"`
	Loading   bool          `json:"loading"`
	Exporting bool          `json:"exporting"`
	NumPages  int           `json:"numPages"`
	Rotated   int           `json:"rotatedPages"`
	Error     *ErrorInfo    `json:"error,omitempty"`
	Pages     []PageState   `json:"pages"`
}

// PageState は1ページ分の表示状態です。
type PageState struct {
	Page      int  `json:"page"`
	Original  int  `json:"original"`  // PDFに元々設定されている回転
	Rotation  int  `json:"rotation"`  // 利用者が加えた累積回転（未正規化）
	Effective int  `json:"effective"` // 書き出し後の回転
	Rotated   bool `json:"rotated"`
}
