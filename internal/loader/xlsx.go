package loader

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

func readXLSXTables(path string) ([]table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open xlsx %s", filepath.Base(path))
	}

	tables := make([]table, 0, len(f.Sheets))
	for _, sheet := range f.Sheets {
		t := table{name: sheet.Name}
		for i, row := range sheet.Rows {
			cells := rowToStrings(row)
			if i == 0 {
				t.header = cells
				continue
			}
			t.rows = append(t.rows, cells)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
