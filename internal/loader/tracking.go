package loader

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/commune-qc/internal/config"
	"github.com/sells-group/commune-qc/internal/engine"
	"github.com/sells-group/commune-qc/internal/model"
)

// LoadTracking reads the tracking extract (source B), which may be spread
// over several logical sheets. Every sheet exposing the two required columns
// (site key and category) contributes rows; the ticket and road columns are
// optional per sheet. A file with no usable sheet at all is a structural
// error.
func LoadTracking(path string, cfg config.TrackingSource) ([]model.TrackingRecord, error) {
	if fileAbsent(path) {
		return nil, nil
	}

	tables, err := readTables(path)
	if err != nil {
		return nil, err
	}

	var records []model.TrackingRecord
	usable := 0
	for _, t := range tables {
		keyIdx := t.columnIndex(cfg.SiteKey)
		catIdx := t.columnIndex(cfg.Category)
		if keyIdx < 0 || catIdx < 0 {
			continue
		}
		usable++

		uprIdx := t.columnIndex(cfg.TicketUPR)
		ticketIdx := t.columnIndex(cfg.Ticket501511)
		roadIdx := t.columnIndex(cfg.RoadCategory)

		for _, row := range t.rows {
			rec := model.TrackingRecord{
				SiteKey:      engine.NormalizeKey(t.cell(row, keyIdx)),
				Category:     engine.NormalizeKey(t.cell(row, catIdx)),
				TicketUPR:    engine.NormalizeKey(t.cell(row, uprIdx)),
				Ticket501511: engine.NormalizeKey(t.cell(row, ticketIdx)),
				RoadCategory: engine.NormalizeKey(t.cell(row, roadIdx)),
			}
			if rec == (model.TrackingRecord{}) {
				continue
			}
			records = append(records, rec)
		}
	}
	if usable == 0 {
		return nil, eris.Errorf("loader: no tracking sheet exposes columns %q and %q",
			cfg.SiteKey, cfg.Category)
	}

	zap.L().Info("loader: tracking extract loaded",
		zap.Int("sheets", usable),
		zap.Int("rows", len(records)),
	)
	return records, nil
}
