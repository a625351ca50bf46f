package model

// FindingKind identifies the class of a detected defect.
type FindingKind string

const (
	FindingDuplicateIMB        FindingKind = "duplicate_imb"
	FindingMislabeledResolved  FindingKind = "mislabeled_resolved"
	FindingPendingReview       FindingKind = "pending_review"
	FindingInvalidCategory     FindingKind = "invalid_category"
	FindingMissingTicketUPR    FindingKind = "missing_ticket_upr"
	FindingMissingTicket501511 FindingKind = "missing_ticket_501511"
	FindingMotifGap            FindingKind = "motif_gap"
	FindingMissingSource       FindingKind = "missing_source"
)

// Severity grades a finding. Critical findings force a KO verdict regardless
// of the numeric score.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Finding is a single detected defect. Findings are created by detectors and
// never mutated afterwards.
type Finding struct {
	Kind     FindingKind `json:"kind"`
	SiteKey  string      `json:"site_key,omitempty"`
	Category string      `json:"category,omitempty"`
	Detail   string      `json:"detail"`
	Severity Severity    `json:"severity"`
}
