// Package loader reads the survey and tracking extracts from XLSX or CSV
// files into record slices. A missing file is not an error: the loaders
// return an empty slice and let the engine's structural gate report it.
package loader

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/commune-qc/internal/taxonomy"
)

// table is one logical sheet: a header row plus data rows.
type table struct {
	name   string
	header []string
	rows   [][]string
}

// columnIndex resolves configured header names to column positions. Header
// comparison goes through taxonomy.Canon so hand-edited extracts with
// accent or case drift still resolve.
func (t table) columnIndex(header string) int {
	want := taxonomy.Canon(header)
	for i, h := range t.header {
		if taxonomy.Canon(h) == want {
			return i
		}
	}
	return -1
}

func (t table) cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// readTables loads every sheet of an XLSX file, or the single logical sheet
// of a CSV file, as raw string tables.
func readTables(path string) ([]table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVTable(path)
	default:
		return readXLSXTables(path)
	}
}

func readCSVTable(path string) ([]table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow variable fields

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "loader: read csv %s", path)
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return []table{{name: filepath.Base(path)}}, nil
	}
	return []table{{name: filepath.Base(path), header: rows[0], rows: rows[1:]}}, nil
}

// fileAbsent reports whether a load should silently yield an empty slice.
func fileAbsent(path string) bool {
	if path == "" {
		return true
	}
	if _, err := os.Stat(path); err != nil {
		zap.L().Warn("loader: extract file not available", zap.String("path", path))
		return true
	}
	return false
}
