// Package pdftest はテスト用の最小構成PDFを生成します。
package pdftest

import (
	"bytes"
	"fmt"
)

// Build は rotations の要素数と同じページ数を持つPDFを返します。
// 各要素はページの /Rotate 値で、負の値を指定すると /Rotate を出力しません。
func Build(rotations ...int) []byte {
	var buf bytes.Buffer
	offsets := []int{}

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := &bytes.Buffer{}
	for i := range rotations {
		if i > 0 {
			kids.WriteByte(' ')
		}
		fmt.Fprintf(kids, "%d 0 R", i+3)
	}

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), len(rotations)))
	for _, rot := range rotations {
		page := "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >>"
		if rot >= 0 {
			page += fmt.Sprintf(" /Rotate %d", rot)
		}
		writeObj(page + " >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f\r\n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

// Pages は /Rotate を持たない n ページのPDFを返します。
func Pages(n int) []byte {
	rotations := make([]int, n)
	for i := range rotations {
		rotations[i] = -1
	}
	return Build(rotations...)
}
