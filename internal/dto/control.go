package dto

import "time"

// StatusResponse describes the progress of the current run.
type StatusResponse struct {
	RunID      string    `json:"run_id"`
	Phase      string    `json:"phase"`
	StartedAt  time.Time `json:"started_at"`
	Strategy   string    `json:"strategy"`
	Inventory  int       `json:"inventory"`
	Extracted  int       `json:"extracted"`
	Reconciled int       `json:"reconciled"`
	Errors     int       `json:"errors"`
}

// PendingConfirmation is an operator request waiting for an answer.
type PendingConfirmation struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// ConfirmRequest answers a pending confirmation. An empty ID answers the oldest one.
type ConfirmRequest struct {
	ID      string `json:"id"`
	Approve *bool  `json:"approve"`
}
