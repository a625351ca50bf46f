// Package engine implements the commune QC reconciliation and scoring core:
// five independent defect detectors over the survey and tracking extracts,
// reduced into a single weighted conformity verdict.
//
// The engine is a pure computation over two in-memory tables. It never
// mutates its inputs, never raises for malformed rows, and re-running it on
// the same inputs yields an identical result.
package engine

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/commune-qc/internal/config"
	"github.com/sells-group/commune-qc/internal/model"
	"github.com/sells-group/commune-qc/internal/taxonomy"
)

// Input bundles one commune's two extracts. A loader that failed structurally
// (file present but required columns missing) reports the problem via the
// corresponding Issue field; the gate turns it into a critical finding rather
// than an error.
type Input struct {
	Commune       string
	Survey        []model.SiteRecord
	Tracking      []model.TrackingRecord
	SurveyIssue   string
	TrackingIssue string
}

// Analyzer runs the full QC pipeline for one commune at a time. It holds no
// state between runs.
type Analyzer struct {
	tax *taxonomy.Taxonomy
	cfg config.ScorerConfig
}

// New creates an Analyzer with the given taxonomy and scoring policy.
func New(tax *taxonomy.Taxonomy, cfg config.ScorerConfig) *Analyzer {
	return &Analyzer{tax: tax, cfg: cfg}
}

// Analyze runs the structural gate, the five detectors, and the scorer.
// Malformed data never produces an error: every problem is communicated
// through the returned result's status, findings and reasons.
func (a *Analyzer) Analyze(ctx context.Context, in Input) *model.AnalysisResult {
	log := zap.L().With(zap.String("commune", in.Commune))

	if gate := structuralIssues(in); len(gate) > 0 {
		log.Warn("engine: structural gate fired", zap.Int("issues", len(gate)))
		return gateResult(in, gate)
	}

	// The five detectors are mutually independent and read-only over the
	// inputs, so they fan out; the scorer is the join barrier.
	var out detectorOutputs
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.motifs, out.gapCount = ReconcileMotifs(a.tax, in.Survey, in.Tracking)
		return nil
	})
	g.Go(func() error {
		out.tickets = CheckTickets(a.tax, in.Tracking)
		return nil
	})
	g.Go(func() error {
		out.dups = DetectDuplicates(a.tax, in.Survey)
		return nil
	})
	g.Go(func() error {
		out.pending = FlagPendingReview(a.tax, in.Survey)
		return nil
	})
	g.Go(func() error {
		out.invalid = FlagInvalidCategories(a.tax, in.Survey)
		return nil
	})
	_ = g.Wait() // detectors do not fail

	res := score(a.cfg, in, out)

	log.Info("engine: analysis complete",
		zap.String("status", string(res.Status)),
		zap.Int("survey_rows", res.SurveyRows),
		zap.Int("tracking_rows", res.TrackingRows),
		zap.Int("findings", len(res.Findings)),
	)
	return res
}
