package models

import "time"

type WorkflowStatus string

const (
	DraftWorkflowStatus  WorkflowStatus = "draft"
	ActiveWorkflowStatus WorkflowStatus = "active"
	PausedWorkflowStatus WorkflowStatus = "paused"
	FailedWorkflowStatus WorkflowStatus = "failed"
)

// Workflow represents a user-authored automation: a node/edge graph plus metadata.
// The graph itself is stored serialized in JSONConfig and parsed at run time.
type Workflow struct {
	ID          int64          `json:"id" db:"id"`                   // Unique identifier (PostgreSQL auto-increment)
	OwnerID     string         `json:"owner_id" db:"owner_id"`       // Authoring user
	OrgID       string         `json:"org_id" db:"org_id"`           // Owning organization
	Title       string         `json:"title" db:"title"`             // Descriptive title (e.g., "Lead capture")
	Description string         `json:"description" db:"description"` // Free-form description
	Prompt      string         `json:"prompt,omitempty" db:"prompt"` // Originating builder prompt, if any
	JSONConfig  string         `json:"json_config" db:"json_config"` // Serialized graph (nodes + edges)
	Category    string         `json:"category" db:"category"`       // e.g., "marketing", "general"
	Status      WorkflowStatus `json:"status" db:"status"`           // "draft", "active", "paused", "failed"
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`   // Creation timestamp
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`   // Last update timestamp
}

// Runnable reports whether a run may be started for this workflow.
// Only active workflows are runnable.
func (w Workflow) Runnable() bool {
	return w.Status == ActiveWorkflowStatus
}
