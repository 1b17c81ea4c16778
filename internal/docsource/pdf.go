package docsource

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Gaps between glyphs, as a share of the font size, that read as a word
// break and as a column break.
const (
	wordGap   = 0.2
	columnGap = 1.5
)

// pdfText reads text row by row so that table columns stay on one line,
// separated by tabs where the gap between words is wide.
func (l *Loader) pdfText(ctx context.Context, data []byte) (text string, pages int, warnings []string, err error) {
	defer func() {
		// the reader panics on some malformed files
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, nil, err
	}

	pages = r.NumPage()
	if l.cfg.MaxPages > 0 && pages > l.cfg.MaxPages {
		warnings = append(warnings, fmt.Sprintf("only the first %d of %d pages read", l.cfg.MaxPages, pages))
		pages = l.cfg.MaxPages
	}

	var b strings.Builder
	for n := 1; n <= pages; n++ {
		if ctx.Err() != nil {
			warnings = append(warnings, "stopped early: "+ctx.Err().Error())
			break
		}
		p := r.Page(n)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", n, err))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		for _, row := range rows {
			line := rowText(row.Content)
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n"), pages, warnings, nil
}

func rowText(words pdf.TextHorizontal) string {
	var b strings.Builder
	prevEnd := -1.0
	for _, w := range words {
		size := w.FontSize
		if size <= 0 {
			size = 10
		}
		if prevEnd >= 0 {
			gap := w.X - prevEnd
			switch {
			case gap > columnGap*size:
				b.WriteByte('\t')
			case gap > wordGap*size && !strings.HasPrefix(w.S, " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(w.S)
		prevEnd = w.X + w.W
	}
	return b.String()
}
