package textsource

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// nativePages reads a PDF in-process, one text line per visual row.
func nativePages(path string) (pages [][]string, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	defer func() {
		// The reader panics on some malformed content streams.
		if p := recover(); p != nil {
			pages, err = nil, fmt.Errorf("pdf: %v", p)
		}
	}()

	n := r.NumPage()
	pages = make([][]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, joinRow(row.Content))
		}
		pages = append(pages, lines)
	}
	return pages, nil
}

// joinRow concatenates the text runs of one row, inserting a space where
// the horizontal gap between runs is wider than a fraction of the font size.
func joinRow(texts pdf.TextHorizontal) string {
	var b strings.Builder
	var prevEnd float64
	for i, t := range texts {
		if i > 0 && t.X-prevEnd > t.FontSize*0.2 {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return b.String()
}
