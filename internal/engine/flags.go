package engine

import (
	"fmt"

	"github.com/sells-group/commune-qc/internal/model"
	"github.com/sells-group/commune-qc/internal/taxonomy"
)

// FlagPendingReview emits one finding per survey row still carrying the
// "needs analysis" category with a present key (criterion 4). No dedup: each
// row is a distinct unit of required human work.
func FlagPendingReview(tax *taxonomy.Taxonomy, survey []model.SiteRecord) []model.Finding {
	var findings []model.Finding
	for _, rec := range survey {
		key := NormalizeKey(rec.SiteKey)
		if key == "" || !tax.Is(rec.Category, tax.NeedsAnalysis) {
			continue
		}
		findings = append(findings, model.Finding{
			Kind:     model.FindingPendingReview,
			SiteKey:  key,
			Category: rec.Category,
			Detail:   fmt.Sprintf("site %s still awaits analysis", key),
			Severity: model.SeverityMinor,
		})
	}
	return findings
}

// FlagInvalidCategories emits one finding per survey row whose non-empty
// category is outside the closed taxonomy (criterion 5). Empty categories
// are skipped: absence of data is not an invalid value.
func FlagInvalidCategories(tax *taxonomy.Taxonomy, survey []model.SiteRecord) []model.Finding {
	var findings []model.Finding
	for _, rec := range survey {
		canon := taxonomy.Canon(rec.Category)
		if canon == "" || tax.Member(rec.Category) {
			continue
		}
		findings = append(findings, model.Finding{
			Kind:     model.FindingInvalidCategory,
			SiteKey:  NormalizeKey(rec.SiteKey),
			Category: rec.Category,
			Detail:   fmt.Sprintf("category %q is not in the taxonomy", rec.Category),
			Severity: model.SeverityMinor,
		})
	}
	return findings
}
