package docsource

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxText renders every sheet as tab-separated rows. With more than one
// sheet each block is headed by the upper-cased sheet name.
func xlsxText(data []byte) (string, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var b strings.Builder
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", 0, err
		}
		if len(sheets) > 1 {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(strings.ToUpper(sheet))
			b.WriteString("\n")
		}
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			empty := true
			for _, c := range row {
				c = strings.Join(strings.Fields(c), " ")
				if c != "" {
					empty = false
				}
				cells = append(cells, c)
			}
			if empty {
				continue
			}
			b.WriteString(strings.TrimRight(strings.Join(cells, "\t"), "\t"))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n"), len(sheets), nil
}
