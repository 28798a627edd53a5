package editor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// workspace は1つの文書または1回の書き出しに割り当てる一時ディレクトリです。
type workspace struct {
	id     string
	dir    string
	inDir  string
	outDir string
}

func createWorkspace(root string) (workspace, error) {
	id := uuid.NewString()
	dir := filepath.Join(root, id)
	ws := workspace{
		id:     id,
		dir:    dir,
		inDir:  filepath.Join(dir, "in"),
		outDir: filepath.Join(dir, "out"),
	}
	for _, d := range []string{ws.inDir, ws.outDir} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			_ = removeDir(dir)
			return workspace{}, fmt.Errorf("作業ディレクトリの作成に失敗しました: %w", err)
		}
	}
	return ws, nil
}

func removeDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.RemoveAll(dir)
}
