package loader

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/commune-qc/internal/config"
	"github.com/sells-group/commune-qc/internal/engine"
	"github.com/sells-group/commune-qc/internal/model"
)

// LoadSurvey reads the site survey extract (source A). A missing file yields
// (nil, nil); a present file lacking any of the six required columns yields
// an error the caller routes into the structural gate.
func LoadSurvey(path string, cfg config.SurveySource) ([]model.SiteRecord, error) {
	if fileAbsent(path) {
		return nil, nil
	}

	tables, err := readTables(path)
	if err != nil {
		return nil, err
	}

	t, err := pickSurveySheet(tables, cfg.Sheet)
	if err != nil {
		return nil, err
	}

	cols := map[string]int{
		cfg.SiteKey:          t.columnIndex(cfg.SiteKey),
		cfg.Number:           t.columnIndex(cfg.Number),
		cfg.Responder:        t.columnIndex(cfg.Responder),
		cfg.Label:            t.columnIndex(cfg.Label),
		cfg.Category:         t.columnIndex(cfg.Category),
		cfg.ReferenceAddress: t.columnIndex(cfg.ReferenceAddress),
	}
	var missing []string
	for name, idx := range cols {
		if idx < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("loader: survey sheet %q missing required column(s) %s",
			t.name, strings.Join(missing, ", "))
	}

	var records []model.SiteRecord
	for _, row := range t.rows {
		rec := model.SiteRecord{
			SiteKey:          engine.NormalizeKey(t.cell(row, cols[cfg.SiteKey])),
			Number:           engine.NormalizeKey(t.cell(row, cols[cfg.Number])),
			Responder:        engine.NormalizeKey(t.cell(row, cols[cfg.Responder])),
			Label:            engine.NormalizeKey(t.cell(row, cols[cfg.Label])),
			Category:         engine.NormalizeKey(t.cell(row, cols[cfg.Category])),
			ReferenceAddress: engine.NormalizeKey(t.cell(row, cols[cfg.ReferenceAddress])),
		}
		if rec == (model.SiteRecord{}) {
			continue // fully blank row
		}
		records = append(records, rec)
	}

	zap.L().Info("loader: survey extract loaded",
		zap.String("sheet", t.name),
		zap.Int("rows", len(records)),
	)
	return records, nil
}

func pickSurveySheet(tables []table, name string) (table, error) {
	if len(tables) == 0 {
		return table{}, eris.New("loader: survey file has no sheets")
	}
	if name == "" {
		return tables[0], nil
	}
	for _, t := range tables {
		if strings.EqualFold(t.name, name) {
			return t, nil
		}
	}
	return table{}, eris.Errorf("loader: survey sheet %q not found", name)
}
