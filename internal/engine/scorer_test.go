package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/commune-qc/internal/config"
	"github.com/sells-group/commune-qc/internal/model"
)

func testScorerConfig() config.ScorerConfig {
	return config.ScorerConfig{
		PrimaryWeight:   0.30,
		SecondaryWeight: 0.60,
		TicketWeight:    0.05,
		GapWeight:       0.05,
		PassThreshold:   90,
	}
}

func TestRateTicket(t *testing.T) {
	tests := []struct {
		name   string
		upr    model.CheckStatus
		ticket model.CheckStatus
		want   float64
	}{
		{"both not applicable", model.CheckNotApplicable, model.CheckNotApplicable, 0},
		{"both ok", model.CheckOK, model.CheckOK, 0},
		{"ok and not applicable", model.CheckOK, model.CheckNotApplicable, 0},
		{"one nok", model.CheckNOK, model.CheckOK, 0.5},
		{"other nok", model.CheckNotApplicable, model.CheckNOK, 0.5},
		{"both nok", model.CheckNOK, model.CheckNOK, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rateTicket(model.TicketChecks{UPRStatus: tt.upr, TicketStatus: tt.ticket})
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRateSecondary(t *testing.T) {
	out := detectorOutputs{
		dups:    model.DuplicateReport{TotalFindingCount: 3},
		pending: make([]model.Finding, 2),
		invalid: make([]model.Finding, 1),
	}

	assert.InDelta(t, 0.6, rateSecondary(out, 10), 1e-9)
	// Capped at 1 when findings outnumber rows.
	assert.InDelta(t, 1.0, rateSecondary(out, 4), 1e-9)
	// Zero rows contribute nothing (gate handles emptiness upstream).
	assert.InDelta(t, 0.0, rateSecondary(out, 0), 1e-9)
}

func TestRateGap(t *testing.T) {
	counts := []model.MotifCount{
		{Category: "a", SurveyCount: 5, TrackingCount: 3, HasGap: true},
		{Category: "b", SurveyCount: 2, TrackingCount: 2},
		{Category: "c", SurveyCount: 0, TrackingCount: 1, HasGap: true},
	}
	// denom = max(5,3) + max(2,2) + max(0,1) = 8, gaps = 2
	assert.InDelta(t, 0.25, rateGap(counts, 2), 1e-9)

	// All-zero counts fall back to denominator 1.
	assert.InDelta(t, 0.0, rateGap(nil, 0), 1e-9)
}

func TestScoreCleanRunIsPerfect(t *testing.T) {
	in := Input{
		Survey:   []model.SiteRecord{{SiteKey: "S1", Category: "no-action"}},
		Tracking: []model.TrackingRecord{{SiteKey: "S1", Category: "no-action"}},
	}
	out := detectorOutputs{
		motifs: []model.MotifCount{{Category: "no-action", SurveyCount: 1, TrackingCount: 1}},
		tickets: model.TicketChecks{
			UPRStatus:    model.CheckNotApplicable,
			TicketStatus: model.CheckNotApplicable,
		},
	}

	res := score(testScorerConfig(), in, out)

	assert.Equal(t, model.StatusOK, res.Status)
	assert.NotNil(t, res.Conformity)
	assert.InDelta(t, 100.0, *res.Conformity, 1e-9)
	assert.Empty(t, res.Reasons)
	assert.Empty(t, res.Findings)
}

func TestScoreMislabelOverride(t *testing.T) {
	// High conformity but a mislabeled resolved record: KO regardless.
	in := Input{
		Survey:   make([]model.SiteRecord, 100),
		Tracking: []model.TrackingRecord{{SiteKey: "S1"}},
	}
	out := detectorOutputs{
		tickets: model.TicketChecks{
			UPRStatus:    model.CheckNotApplicable,
			TicketStatus: model.CheckNotApplicable,
		},
		dups: model.DuplicateReport{
			MislabelFindingCount: 1,
			TotalFindingCount:    1,
			Findings: []model.Finding{{
				Kind:     model.FindingMislabeledResolved,
				SiteKey:  "S1",
				Severity: model.SeverityMajor,
			}},
		},
	}

	res := score(testScorerConfig(), in, out)

	assert.GreaterOrEqual(t, *res.Conformity, 90.0)
	assert.Equal(t, model.StatusKO, res.Status)
	assert.NotEmpty(t, res.Reasons)
}

func TestScoreBelowThreshold(t *testing.T) {
	// 6 secondary findings over 10 rows: rate 0.6, weighted 0.36,
	// conformity 64 < 90.
	in := Input{
		Survey:   make([]model.SiteRecord, 10),
		Tracking: []model.TrackingRecord{{SiteKey: "S1"}},
	}
	out := detectorOutputs{
		tickets: model.TicketChecks{
			UPRStatus:    model.CheckNotApplicable,
			TicketStatus: model.CheckNotApplicable,
		},
		dups: model.DuplicateReport{
			DuplicateFindingCount: 6,
			TotalFindingCount:     6,
		},
	}

	res := score(testScorerConfig(), in, out)

	assert.Equal(t, model.StatusKO, res.Status)
	assert.InDelta(t, 64.0, *res.Conformity, 0.01)
	assert.NotEmpty(t, res.Reasons)
}

func TestScoreBounds(t *testing.T) {
	// Worst case: every rate saturated. Conformity must stay in [0, 100].
	in := Input{
		Survey:   make([]model.SiteRecord, 1),
		Tracking: []model.TrackingRecord{{SiteKey: "S1"}},
	}
	out := detectorOutputs{
		motifs:   []model.MotifCount{{Category: "a", SurveyCount: 1, HasGap: true, Difference: 1}},
		gapCount: 1,
		tickets: model.TicketChecks{
			UPRStatus:    model.CheckNOK,
			TicketStatus: model.CheckNOK,
		},
		dups: model.DuplicateReport{DuplicateFindingCount: 50, TotalFindingCount: 50},
	}

	res := score(testScorerConfig(), in, out)

	assert.GreaterOrEqual(t, *res.Conformity, 0.0)
	assert.LessOrEqual(t, *res.Conformity, 100.0)
	assert.Equal(t, model.StatusKO, res.Status)
}

func TestStructuralIssues(t *testing.T) {
	t.Run("both present", func(t *testing.T) {
		in := Input{
			Survey:   []model.SiteRecord{{SiteKey: "S1"}},
			Tracking: []model.TrackingRecord{{SiteKey: "S1"}},
		}
		assert.Empty(t, structuralIssues(in))
	})

	t.Run("survey empty", func(t *testing.T) {
		in := Input{Tracking: []model.TrackingRecord{{SiteKey: "S1"}}}
		gate := structuralIssues(in)
		assert.Len(t, gate, 1)
		assert.Equal(t, model.SeverityCritical, gate[0].Severity)
	})

	t.Run("loader issue wins over emptiness", func(t *testing.T) {
		in := Input{
			SurveyIssue: "missing required column \"Motif\"",
			Tracking:    []model.TrackingRecord{{SiteKey: "S1"}},
		}
		gate := structuralIssues(in)
		assert.Len(t, gate, 1)
		assert.Contains(t, gate[0].Detail, "Motif")
	})

	t.Run("both missing", func(t *testing.T) {
		gate := structuralIssues(Input{})
		assert.Len(t, gate, 2)
	})
}
