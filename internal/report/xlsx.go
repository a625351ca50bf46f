package report

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/commune-qc/internal/model"
)

// WriteWorkbook writes a three-sheet workbook (Summary, Motifs, Findings)
// to path.
func WriteWorkbook(path string, result *model.AnalysisResult) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, result); err != nil {
		return err
	}
	if err := addMotifSheet(f, result); err != nil {
		return err
	}
	if err := addFindingsSheet(f, result); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, result *model.AnalysisResult) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	pairs := [][2]string{
		{"Commune", result.Commune},
		{"Status", string(result.Status)},
		{"Conformity", formatConformity(result.Conformity)},
		{"Survey rows", strconv.Itoa(result.SurveyRows)},
		{"Tracking rows", strconv.Itoa(result.TrackingRows)},
		{"Motif gaps", strconv.Itoa(result.MotifGapCount)},
		{"Duplicate findings", strconv.Itoa(result.Duplicates.TotalFindingCount)},
		{"Pending review", strconv.Itoa(result.PendingReview)},
		{"Invalid categories", strconv.Itoa(result.InvalidCount)},
		{"UPR ticket check", string(result.Tickets.UPRStatus)},
		{"501/511 ticket check", string(result.Tickets.TicketStatus)},
	}
	for _, p := range pairs {
		row := sheet.AddRow()
		row.AddCell().SetString(p[0])
		row.AddCell().SetString(p[1])
	}
	for _, reason := range result.Reasons {
		row := sheet.AddRow()
		row.AddCell().SetString("Reason")
		row.AddCell().SetString(reason)
	}
	return nil
}

func addMotifSheet(f *xlsx.File, result *model.AnalysisResult) error {
	sheet, err := f.AddSheet("Motifs")
	if err != nil {
		return eris.Wrap(err, "report: add motif sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Category", "Survey", "Tracking", "Difference", "Gap"} {
		header.AddCell().SetString(h)
	}
	for _, mc := range result.MotifCounts {
		row := sheet.AddRow()
		row.AddCell().SetString(mc.Category)
		row.AddCell().SetString(strconv.Itoa(mc.SurveyCount))
		row.AddCell().SetString(strconv.Itoa(mc.TrackingCount))
		row.AddCell().SetString(strconv.Itoa(mc.Difference))
		row.AddCell().SetString(fmt.Sprintf("%v", mc.HasGap))
	}
	return nil
}

func addFindingsSheet(f *xlsx.File, result *model.AnalysisResult) error {
	sheet, err := f.AddSheet("Findings")
	if err != nil {
		return eris.Wrap(err, "report: add findings sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Kind", "Severity", "Site key", "Category", "Detail"} {
		header.AddCell().SetString(h)
	}
	for _, finding := range result.Findings {
		row := sheet.AddRow()
		row.AddCell().SetString(string(finding.Kind))
		row.AddCell().SetString(string(finding.Severity))
		row.AddCell().SetString(finding.SiteKey)
		row.AddCell().SetString(finding.Category)
		row.AddCell().SetString(finding.Detail)
	}
	return nil
}
