package engine

import (
	"fmt"
	"math"

	"github.com/sells-group/commune-qc/internal/config"
	"github.com/sells-group/commune-qc/internal/model"
)

// detectorOutputs collects the five detector results before reduction.
type detectorOutputs struct {
	motifs   []model.MotifCount
	gapCount int
	tickets  model.TicketChecks
	dups     model.DuplicateReport
	pending  []model.Finding
	invalid  []model.Finding
}

// structuralIssues returns one message per unusable source table. A non-empty
// result fires the structural gate: immediate KO, score not applicable.
func structuralIssues(in Input) []model.Finding {
	var findings []model.Finding
	if in.SurveyIssue != "" {
		findings = append(findings, model.Finding{
			Kind:     model.FindingMissingSource,
			Detail:   fmt.Sprintf("survey extract unusable: %s", in.SurveyIssue),
			Severity: model.SeverityCritical,
		})
	} else if len(in.Survey) == 0 {
		findings = append(findings, model.Finding{
			Kind:     model.FindingMissingSource,
			Detail:   "survey extract missing or empty",
			Severity: model.SeverityCritical,
		})
	}
	if in.TrackingIssue != "" {
		findings = append(findings, model.Finding{
			Kind:     model.FindingMissingSource,
			Detail:   fmt.Sprintf("tracking extract unusable: %s", in.TrackingIssue),
			Severity: model.SeverityCritical,
		})
	} else if len(in.Tracking) == 0 {
		findings = append(findings, model.Finding{
			Kind:     model.FindingMissingSource,
			Detail:   "tracking extract missing or empty",
			Severity: model.SeverityCritical,
		})
	}
	return findings
}

// gateResult builds the KO result for a fired structural gate. Conformity is
// left nil: the weighted score is not applicable without both sources.
func gateResult(in Input, gate []model.Finding) *model.AnalysisResult {
	res := &model.AnalysisResult{
		Commune:      in.Commune,
		Status:       model.StatusKO,
		SurveyRows:   len(in.Survey),
		TrackingRows: len(in.Tracking),
		Tickets: model.TicketChecks{
			UPRStatus:    model.CheckNotApplicable,
			TicketStatus: model.CheckNotApplicable,
		},
		Findings: gate,
	}
	for _, f := range gate {
		res.Reasons = append(res.Reasons, f.Detail)
	}
	return res
}

// score reduces the five detector outputs into the weighted verdict.
func score(cfg config.ScorerConfig, in Input, out detectorOutputs) *model.AnalysisResult {
	res := &model.AnalysisResult{
		Commune:       in.Commune,
		SurveyRows:    len(in.Survey),
		TrackingRows:  len(in.Tracking),
		MotifCounts:   out.motifs,
		MotifGapCount: out.gapCount,
		Tickets:       out.tickets,
		Duplicates:    out.dups,
		PendingReview: len(out.pending),
		InvalidCount:  len(out.invalid),
	}

	// Fixed concatenation order keeps the result byte-stable across runs.
	res.Findings = append(res.Findings, MotifGapFindings(out.motifs)...)
	res.Findings = append(res.Findings, out.tickets.Findings...)
	res.Findings = append(res.Findings, out.dups.Findings...)
	res.Findings = append(res.Findings, out.pending...)
	res.Findings = append(res.Findings, out.invalid...)

	res.Rates = model.Rates{
		Primary:   0, // category-specific rate, extension point
		Secondary: rateSecondary(out, len(in.Survey)),
		Ticket:    rateTicket(out.tickets),
		Gap:       rateGap(out.motifs, out.gapCount),
	}

	res.WeightedError = cfg.PrimaryWeight*res.Rates.Primary +
		cfg.SecondaryWeight*res.Rates.Secondary +
		cfg.TicketWeight*res.Rates.Ticket +
		cfg.GapWeight*res.Rates.Gap

	conformity := 100 * (1 - res.WeightedError)
	conformity = math.Round(math.Min(100, math.Max(0, conformity))*100) / 100
	res.Conformity = &conformity

	// Critical-fault override: any critical finding or any mislabeled
	// "resolved" record forces KO regardless of the numeric score.
	for _, f := range res.Findings {
		if f.Severity == model.SeverityCritical {
			res.Reasons = append(res.Reasons, fmt.Sprintf("critical fault: %s", f.Detail))
		}
	}
	if out.dups.MislabelFindingCount > 0 {
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("%d mislabeled resolved record(s)", out.dups.MislabelFindingCount))
	}

	if len(res.Reasons) == 0 && conformity >= cfg.PassThreshold {
		res.Status = model.StatusOK
		return res
	}

	res.Status = model.StatusKO
	if conformity < cfg.PassThreshold {
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("conformity %.2f%% below pass threshold %.1f%%", conformity, cfg.PassThreshold))
	}
	return res
}

// rateSecondary is the defect density over the survey table: criteria 3, 4
// and 5 finding counts per survey row, capped at 1.
func rateSecondary(out detectorOutputs, surveyRows int) float64 {
	if surveyRows == 0 {
		return 0
	}
	total := out.dups.TotalFindingCount + len(out.pending) + len(out.invalid)
	return math.Min(1, float64(total)/float64(surveyRows))
}

// rateTicket maps the two check statuses onto {0, 0.5, 1}.
func rateTicket(checks model.TicketChecks) float64 {
	nok := 0
	if checks.UPRStatus == model.CheckNOK {
		nok++
	}
	if checks.TicketStatus == model.CheckNOK {
		nok++
	}
	return float64(nok) / 2
}

// rateGap normalizes the motif gap count by the larger side of each
// category's counts.
func rateGap(counts []model.MotifCount, gapCount int) float64 {
	denom := 0
	for _, mc := range counts {
		denom += max(mc.SurveyCount, mc.TrackingCount)
	}
	if denom < 1 {
		denom = 1
	}
	return math.Min(1, float64(gapCount)/float64(denom))
}
