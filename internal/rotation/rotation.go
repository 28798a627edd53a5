// Package rotation はページ単位の回転量（度）の管理と正規化を提供します。
package rotation

import (
	"fmt"
	"sort"
	"strings"
)

// Step は1回の回転操作で加算される角度です。
const Step = 90

// Direction は回転方向を表します。
type Direction string

const (
	Left  Direction = "left"  // 反時計回り（-90度）
	Right Direction = "right" // 時計回り（+90度）
)

// ParseDirection は文字列から回転方向を取得します。
func ParseDirection(raw string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(raw))) {
	case Left:
		return Left, nil
	case Right:
		return Right, nil
	default:
		return "", fmt.Errorf("unknown direction: %q", raw)
	}
}

// Delta は方向に対応する加算角度を返します。
func (d Direction) Delta() int {
	if d == Left {
		return -Step
	}
	return Step
}

// Normalize は累積角度を 0, 90, 180, 270 のいずれかに変換します。
// 入力は90の倍数であることを前提とします。
func Normalize(degrees int) int {
	r := degrees % 360
	if r < 0 {
		r += 360
	}
	return r
}

// IsCanonical は角度が正規化済みの値かどうかを返します。
func IsCanonical(degrees int) bool {
	switch degrees {
	case 0, 90, 180, 270:
		return true
	default:
		return false
	}
}

// Map はページ番号（1始まり）から累積回転角度への疎なマッピングです。
// キーが存在しないページの回転量は 0 とみなします。ゼロ値のまま利用できます。
// 累積値は編集中に丸めず、書き出し時に Normalize されます。
type Map struct {
	entries map[int]int
}

// Add は指定ページの累積角度に delta を加算し、加算後の値を返します。
func (m *Map) Add(page, delta int) int {
	if m.entries == nil {
		m.entries = make(map[int]int)
	}
	m.entries[page] += delta
	return m.entries[page]
}

// Get は累積角度を返します。未編集のページは 0 です。
func (m *Map) Get(page int) int {
	return m.entries[page]
}

// Has は指定ページが一度でも回転操作されたかどうかを返します。
func (m *Map) Has(page int) bool {
	_, ok := m.entries[page]
	return ok
}

// Normalized は指定ページの正規化済み角度を返します。
func (m *Map) Normalized(page int) int {
	return Normalize(m.entries[page])
}

// Len は回転操作されたページ数を返します。
func (m *Map) Len() int {
	return len(m.entries)
}

// Pages は回転操作されたページ番号を昇順で返します。
func (m *Map) Pages() []int {
	pages := make([]int, 0, len(m.entries))
	for p := range m.entries {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// Absolute はエントリごとの正規化済み角度のコピーを返します。
// 書き出し時にページへ設定する絶対角度として利用します。
func (m *Map) Absolute() map[int]int {
	out := make(map[int]int, len(m.entries))
	for p, deg := range m.entries {
		out[p] = Normalize(deg)
	}
	return out
}

// Reset はすべてのエントリを破棄します。
func (m *Map) Reset() {
	m.entries = nil
}
