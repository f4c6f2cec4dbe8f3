package models

import "time"

type NotificationKind string

const (
	WorkflowFailedNotification NotificationKind = "workflow_failed"
	UsageThresholdNotification NotificationKind = "usage_threshold"
	SuggestionNotification     NotificationKind = "suggestion"
	SystemNotification         NotificationKind = "system"
)

type Severity string

const (
	InfoSeverity    Severity = "info"
	WarningSeverity Severity = "warning"
	ErrorSeverity   Severity = "error"
)

// Notification is an operational alert surfaced on the dashboard. It is
// created by the threshold rules (or the billing webhook) and mutated only
// by marking it read.
type Notification struct {
	ID        int64            `json:"id" db:"id"`
	OrgID     string           `json:"org_id" db:"org_id"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	Message   string           `json:"message" db:"message"`
	Severity  Severity         `json:"severity" db:"severity"`
	ReadAt    *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
