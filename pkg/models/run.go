package models

import "time"

type RunStatus string

const (
	RunningRunStatus RunStatus = "running"
	SuccessRunStatus RunStatus = "success"
	FailedRunStatus  RunStatus = "failed"
)

// WorkflowRun is one execution attempt of a workflow. A run is created in
// "running" state and makes exactly one terminal transition to "success" or
// "failed", at which point its duration is computed from StartedAt.
type WorkflowRun struct {
	ID         int64     `json:"id" db:"id"`                     // Auto-incremented run ID
	WorkflowID int64     `json:"workflow_id" db:"workflow_id"`   // Parent workflow
	OrgID      string    `json:"org_id" db:"org_id"`             // Owning organization
	Status     RunStatus `json:"status" db:"status"`             // "running", "success", "failed"
	Category   string    `json:"category" db:"category"`         // Copied from the workflow
	Duration   float64   `json:"duration" db:"duration"`         // Wall-clock seconds, set on terminal transition
	Cost       *float64  `json:"cost,omitempty" db:"cost"`       // Optional execution cost
	ErrorMsg   string    `json:"error,omitempty" db:"error_msg"` // Terminal error message (failed runs)
	StartedAt  time.Time `json:"started_at" db:"started_at"`     // Run creation timestamp
}

// RunLog is one line of a run's persisted, append-only trace. Lines are
// ordered by Seq within a run.
type RunLog struct {
	ID       int64     `json:"id" db:"id"`
	RunID    int64     `json:"run_id" db:"run_id"`
	Seq      int       `json:"seq" db:"seq"`
	Message  string    `json:"message" db:"message"`
	LoggedAt time.Time `json:"logged_at" db:"logged_at"`
}
