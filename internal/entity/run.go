package entity

import "time"

// Reconciliation actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// ReconciliationOutcome is the CRM create-or-update result for one domain.
type ReconciliationOutcome struct {
	Domain     string `json:"domain"`
	Success    bool   `json:"success"`
	CustomerID string `json:"customer_id,omitempty"`
	Action     string `json:"action,omitempty"`
	HostingID  string `json:"hosting_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RunReport aggregates everything one pipeline execution produced.
type RunReport struct {
	RunID           string                    `json:"run_id"`
	Timestamp       time.Time                 `json:"timestamp"`
	Strategy        string                    `json:"strategy,omitempty"`
	DryRun          bool                      `json:"dry_run"`
	PanelOnly       bool                      `json:"panel_only"`
	Inventory       []SiteInventoryRecord     `json:"inventory"`
	Extractions     []ContactExtractionResult `json:"extractions"`
	Reconciliations []ReconciliationOutcome   `json:"reconciliations"`
	Errors          []string                  `json:"errors"`
}

// NewRunReport returns a report with empty, non-nil collections.
func NewRunReport(runID string, now time.Time) *RunReport {
	return &RunReport{
		RunID:           runID,
		Timestamp:       now,
		Inventory:       []SiteInventoryRecord{},
		Extractions:     []ContactExtractionResult{},
		Reconciliations: []ReconciliationOutcome{},
		Errors:          []string{},
	}
}

// Succeeded counts successful reconciliations.
func (r *RunReport) Succeeded() int {
	n := 0
	for _, outcome := range r.Reconciliations {
		if outcome.Success {
			n++
		}
	}
	return n
}
