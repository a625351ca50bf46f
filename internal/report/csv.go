package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/commune-qc/internal/model"
)

// WriteFindingsCSV writes one row per finding, for spreadsheet triage.
func WriteFindingsCSV(w io.Writer, result *model.AnalysisResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"commune", "kind", "severity", "site_key", "category", "detail"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}

	for _, f := range result.Findings {
		row := []string{
			result.Commune,
			string(f.Kind),
			string(f.Severity),
			f.SiteKey,
			f.Category,
			f.Detail,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

func formatConformity(c *float64) string {
	if c == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *c)
}
