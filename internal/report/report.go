// Package report renders analysis results as XLSX workbooks, findings CSV
// files, or indented JSON.
package report

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/commune-qc/internal/model"
)

// WriteJSON writes the full result as indented JSON.
func WriteJSON(w io.Writer, result *model.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}
