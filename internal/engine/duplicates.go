package engine

import (
	"fmt"
	"sort"

	"github.com/sells-group/commune-qc/internal/model"
	"github.com/sells-group/commune-qc/internal/taxonomy"
)

// dupKey is the explicit dedup key for duplicate findings: repeated detection
// passes over the same physical row must not double-count it.
type dupKey struct {
	siteKey   string
	composite string
	reference string
	category  string
}

// DetectDuplicates finds keys repeated with conflicting addresses and
// mislabeled "resolved" records (criterion 3). The two defects are logically
// distinct: a mislabel is reported even when the same row also participates
// in a duplicate subgroup.
func DetectDuplicates(tax *taxonomy.Taxonomy, survey []model.SiteRecord) model.DuplicateReport {
	var report model.DuplicateReport

	// Rows with an empty category cannot form a duplicate subgroup.
	byKey := make(map[string][]model.SiteRecord)
	for _, rec := range survey {
		key := NormalizeKey(rec.SiteKey)
		if key == "" || taxonomy.Canon(rec.Category) == "" {
			continue
		}
		byKey[key] = append(byKey[key], rec)
	}

	// Sorted iteration keeps the findings order deterministic across runs.
	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := make(map[dupKey]struct{})
	dupKeys := make(map[string]struct{})

	for _, key := range keys {
		group := byKey[key]
		if len(group) < 2 {
			continue
		}
		byCategory := make(map[string][]model.SiteRecord)
		for _, rec := range group {
			canon := taxonomy.Canon(rec.Category)
			byCategory[canon] = append(byCategory[canon], rec)
		}
		cats := make([]string, 0, len(byCategory))
		for canon := range byCategory {
			cats = append(cats, canon)
		}
		sort.Strings(cats)
		for _, canon := range cats {
			sub := byCategory[canon]
			if len(sub) < 2 {
				continue
			}
			addrs := make(map[string]struct{})
			for _, rec := range sub {
				if ref := NormalizeKey(rec.ReferenceAddress); ref != "" {
					addrs[ref] = struct{}{}
				}
			}
			// One distinct address repeated is not a defect.
			if len(addrs) < 2 {
				continue
			}
			for _, rec := range sub {
				composite := ComposeAddress(rec.Number, rec.Responder, rec.Label)
				dk := dupKey{
					siteKey:   key,
					composite: composite,
					reference: NormalizeKey(rec.ReferenceAddress),
					category:  taxonomy.Canon(rec.Category),
				}
				if _, dup := seen[dk]; dup {
					continue
				}
				seen[dk] = struct{}{}
				dupKeys[key] = struct{}{}
				report.Findings = append(report.Findings, model.Finding{
					Kind:     model.FindingDuplicateIMB,
					SiteKey:  key,
					Category: rec.Category,
					Detail: fmt.Sprintf("key repeated with %d conflicting reference addresses (this row: %q)",
						len(addrs), NormalizeKey(rec.ReferenceAddress)),
					Severity: model.SeverityMajor,
				})
				report.DuplicateFindingCount++
			}
		}
	}
	report.DuplicateKeyCount = len(dupKeys)

	// Mislabeled "resolved": the composite address merely restates the
	// reference address, so nothing was actually resolved. Independent of
	// duplication, never suppressed by it.
	for _, rec := range survey {
		if !tax.Is(rec.Category, tax.Resolved) {
			continue
		}
		composite := ComposeAddress(rec.Number, rec.Responder, rec.Label)
		reference := NormalizeKey(rec.ReferenceAddress)
		if composite == "" || composite != reference {
			continue
		}
		report.Findings = append(report.Findings, model.Finding{
			Kind:     model.FindingMislabeledResolved,
			SiteKey:  NormalizeKey(rec.SiteKey),
			Category: rec.Category,
			Detail:   fmt.Sprintf("resolved record whose composite address %q equals its reference address", composite),
			Severity: model.SeverityMajor,
		})
		report.MislabelFindingCount++
	}

	report.TotalFindingCount = report.DuplicateFindingCount + report.MislabelFindingCount
	return report
}
