package engine

import (
	"github.com/sells-group/commune-qc/internal/model"
	"github.com/sells-group/commune-qc/internal/taxonomy"
)

// CheckTickets runs the two ticket completeness checks (criterion 2) over the
// tracking extract. Both are OR-triggered and AND-satisfied: the presence of
// a single triggering row makes the check applicable, and a single non-empty
// confirmation anywhere satisfies it. The confirmations are one-per-commune
// administrative artifacts, not per-record values.
func CheckTickets(tax *taxonomy.Taxonomy, tracking []model.TrackingRecord) model.TicketChecks {
	var (
		uprTriggered    bool
		uprSatisfied    bool
		ticketTriggered bool
		ticketSatisfied bool
	)

	for _, rec := range tracking {
		if tax.Is(rec.Category, tax.EscalatedOK) {
			uprTriggered = true
		}
		if NormalizeKey(rec.TicketUPR) != "" {
			uprSatisfied = true
		}
		if tax.Is(rec.RoadCategory, tax.RoadCreate) || tax.Is(rec.RoadCategory, tax.RoadModify) ||
			tax.Is(rec.Category, tax.Resolved) {
			ticketTriggered = true
		}
		if NormalizeKey(rec.Ticket501511) != "" {
			ticketSatisfied = true
		}
	}

	checks := model.TicketChecks{
		UPRStatus:    model.CheckNotApplicable,
		TicketStatus: model.CheckNotApplicable,
	}

	if uprTriggered {
		if uprSatisfied {
			checks.UPRStatus = model.CheckOK
		} else {
			checks.UPRStatus = model.CheckNOK
			checks.Findings = append(checks.Findings, model.Finding{
				Kind:     model.FindingMissingTicketUPR,
				Detail:   "escalated admin-OK present but no UPR ticket confirmation anywhere in tracking",
				Severity: model.SeverityMajor,
			})
		}
	}

	if ticketTriggered {
		if ticketSatisfied {
			checks.TicketStatus = model.CheckOK
		} else {
			checks.TicketStatus = model.CheckNOK
			checks.Findings = append(checks.Findings, model.Finding{
				Kind:     model.FindingMissingTicket501511,
				Detail:   "road works or resolved records present but no 501/511 ticket confirmation anywhere in tracking",
				Severity: model.SeverityMajor,
			})
		}
	}

	return checks
}
