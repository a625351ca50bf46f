package model

import "time"

// Status is the final pass/fail verdict for one commune analysis.
type Status string

const (
	StatusOK Status = "OK"
	StatusKO Status = "KO"
)

// CheckStatus is the outcome of one of the ticket completeness checks.
type CheckStatus string

const (
	CheckOK            CheckStatus = "OK"
	CheckNOK           CheckStatus = "NOK"
	CheckNotApplicable CheckStatus = "N/A"
)

// MotifCount compares the occurrence counts of one taxonomy category between
// the survey and tracking extracts.
type MotifCount struct {
	Category      string `json:"category"`
	SurveyCount   int    `json:"survey_count"`
	TrackingCount int    `json:"tracking_count"`
	Difference    int    `json:"difference"`
	HasGap        bool   `json:"has_gap"`
}

// TicketChecks holds the two ticket completeness verdicts (criterion 2).
type TicketChecks struct {
	UPRStatus    CheckStatus `json:"upr_status"`
	TicketStatus CheckStatus `json:"ticket_status"`
	Findings     []Finding   `json:"findings,omitempty"`
}

// DuplicateReport holds the duplicate and mislabel detection output
// (criterion 3).
type DuplicateReport struct {
	DuplicateKeyCount     int       `json:"duplicate_key_count"`
	DuplicateFindingCount int       `json:"duplicate_finding_count"`
	MislabelFindingCount  int       `json:"mislabel_finding_count"`
	TotalFindingCount     int       `json:"total_finding_count"`
	Findings              []Finding `json:"findings,omitempty"`
}

// Rates are the four normalized error rates feeding the weighted score.
// All values are in [0, 1].
type Rates struct {
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
	Ticket    float64 `json:"ticket"`
	Gap       float64 `json:"gap"`
}

// AnalysisResult is the complete, immutable outcome of one commune analysis.
// Conformity is nil when the structural gate fired (score not applicable).
type AnalysisResult struct {
	Commune       string          `json:"commune,omitempty"`
	Status        Status          `json:"status"`
	Conformity    *float64        `json:"conformity,omitempty"`
	WeightedError float64         `json:"weighted_error"`
	Rates         Rates           `json:"rates"`
	SurveyRows    int             `json:"survey_rows"`
	TrackingRows  int             `json:"tracking_rows"`
	MotifCounts   []MotifCount    `json:"motif_counts,omitempty"`
	MotifGapCount int             `json:"motif_gap_count"`
	Tickets       TicketChecks    `json:"tickets"`
	Duplicates    DuplicateReport `json:"duplicates"`
	PendingReview int             `json:"pending_review"`
	InvalidCount  int             `json:"invalid_count"`
	Findings      []Finding       `json:"findings,omitempty"`
	Reasons       []string        `json:"reasons,omitempty"`
}

// Run is one persisted analysis run.
type Run struct {
	ID        string          `json:"id"`
	Commune   string          `json:"commune"`
	Status    Status          `json:"status"`
	Result    *AnalysisResult `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
