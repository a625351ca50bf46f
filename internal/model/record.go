// Package model defines the plain data types exchanged between the loaders,
// the QC engine, the stores, and the report renderers.
package model

// SiteRecord is one row of the site survey extract (source A). Records are
// immutable once loaded; string fields are already cleaned by the loader
// (trimmed, never the literal "nan").
type SiteRecord struct {
	SiteKey          string `json:"site_key"`
	Number           string `json:"number"`
	Responder        string `json:"responder"`
	Label            string `json:"label"`
	Category         string `json:"category"`
	ReferenceAddress string `json:"reference_address"`
}

// TrackingRecord is one row of the tracking/follow-up extract (source B),
// which may be spread over several logical sheets.
type TrackingRecord struct {
	SiteKey      string `json:"site_key"`
	Category     string `json:"category"`
	TicketUPR    string `json:"ticket_upr,omitempty"`
	Ticket501511 string `json:"ticket_501511,omitempty"`
	RoadCategory string `json:"road_category,omitempty"`
}
