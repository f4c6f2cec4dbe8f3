package storage

import (
	"time"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the storage operations backing the workflow service.
type Store interface {
	// Transaction control
	Begin() (Store, error)
	Commit() error
	Rollback() error
	Close() error

	// Workflow operations
	SaveWorkflow(w models.Workflow) (int64, error)
	GetWorkflow(id int64) (models.Workflow, error)
	ListWorkflows(ownerID string) ([]models.Workflow, error)
	UpdateWorkflowStatus(id int64, status models.WorkflowStatus) error
	DeleteWorkflow(id int64) error

	// Run operations
	SaveRun(r models.WorkflowRun) (int64, error)
	GetRun(id int64) (models.WorkflowRun, error)
	ListRuns(workflowID int64) ([]models.WorkflowRun, error)
	UpdateRunStatus(id int64, status models.RunStatus, duration float64, errorMsg string) error
	CountFailedRunsSince(workflowID int64, since time.Time) (int, error)
	CountRunsSince(orgID string, since time.Time) (int, error)

	// Run log operations
	AppendRunLog(runID int64, message string) error
	ListRunLogs(runID int64) ([]models.RunLog, error)

	// Notification operations
	SaveNotification(n models.Notification) (int64, error)
	ListNotifications(orgID string) ([]models.Notification, error)
	MarkNotificationRead(id int64) error
	CountUnreadNotifications(orgID string, since time.Time) (int, error)

	// Template operations
	SaveTemplate(t models.Template) (int64, error)
	GetTemplate(id int64) (models.Template, error)
	ListTemplates() ([]models.Template, error)
}
