package engine

import (
	"fmt"

	"github.com/sells-group/commune-qc/internal/model"
	"github.com/sells-group/commune-qc/internal/taxonomy"
)

// ReconcileMotifs compares per-category occurrence counts between the survey
// and tracking extracts (criterion 0). Every taxonomy category yields one
// MotifCount in taxonomy order; the gap count is the number of categories
// whose counts differ, not the sum of the differences. A missing extract
// simply contributes zero counts on its side.
func ReconcileMotifs(tax *taxonomy.Taxonomy, survey []model.SiteRecord, tracking []model.TrackingRecord) ([]model.MotifCount, int) {
	surveyCounts := make(map[string]int, len(tax.Categories))
	for _, rec := range survey {
		if canon := taxonomy.Canon(rec.Category); canon != "" {
			surveyCounts[canon]++
		}
	}
	trackingCounts := make(map[string]int, len(tax.Categories))
	for _, rec := range tracking {
		if canon := taxonomy.Canon(rec.Category); canon != "" {
			trackingCounts[canon]++
		}
	}

	counts := make([]model.MotifCount, 0, len(tax.Categories))
	gaps := 0
	for _, cat := range tax.Categories {
		canon := taxonomy.Canon(cat)
		a, b := surveyCounts[canon], trackingCounts[canon]
		diff := a - b
		if diff < 0 {
			diff = -diff
		}
		mc := model.MotifCount{
			Category:      cat,
			SurveyCount:   a,
			TrackingCount: b,
			Difference:    diff,
			HasGap:        diff != 0,
		}
		if mc.HasGap {
			gaps++
		}
		counts = append(counts, mc)
	}
	return counts, gaps
}

// MotifGapFindings renders one finding per gapped category.
func MotifGapFindings(counts []model.MotifCount) []model.Finding {
	var findings []model.Finding
	for _, mc := range counts {
		if !mc.HasGap {
			continue
		}
		findings = append(findings, model.Finding{
			Kind:     model.FindingMotifGap,
			Category: mc.Category,
			Detail: fmt.Sprintf("category %q counted %d times in survey, %d in tracking",
				mc.Category, mc.SurveyCount, mc.TrackingCount),
			Severity: model.SeverityMinor,
		})
	}
	return findings
}
