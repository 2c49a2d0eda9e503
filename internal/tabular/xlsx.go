package tabular

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadclean/internal/record"
)

// ReadXLSX reads the first sheet of an XLSX workbook into the same
// (headers, rows) shape Parse produces. The first row is the header row.
// Unlike Parse, a broken workbook is a real error — there is no tolerant
// fallback for binary formats.
func ReadXLSX(path string) ([]string, record.Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "tabular: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, nil, eris.New("tabular: xlsx has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil, nil
	}

	headers := make([]string, 0, len(sheet.Rows[0].Cells))
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, strings.TrimSpace(cell.String()))
	}
	if len(headers) == 0 {
		return nil, nil, nil
	}

	rows := make(record.Table, 0, len(sheet.Rows)-1)
	for _, xr := range sheet.Rows[1:] {
		cells := xr.Cells
		blank := true
		row := record.New()
		for j, h := range headers {
			v := ""
			if j < len(cells) {
				v = strings.TrimSpace(cells[j].String())
			}
			if v != "" {
				blank = false
			}
			row.Set(h, v)
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}
