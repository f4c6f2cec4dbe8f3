package service

import (
	"time"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/storage"
	"github.com/pkg/errors"
)

// WorkflowService manages workflow records: creation (from scratch or from a
// template), listing, status transitions and deletion. Graph execution lives
// in WorkflowRunner.
type WorkflowService struct {
	store  storage.Store
	logger Logger
}

func NewWorkflowService(store storage.Store, logger Logger) *WorkflowService {
	return &WorkflowService{store: store, logger: logger}
}

// CreateWorkflowInput carries everything needed to create a workflow. When
// TemplateID is set, the template's graph and category seed the new workflow.
type CreateWorkflowInput struct {
	OwnerID     string
	OrgID       string
	Title       string
	Description string
	Prompt      string
	JSONConfig  string
	Category    string
	TemplateID  int64
}

func (s *WorkflowService) CreateWorkflow(in CreateWorkflowInput) (id int64, err error) {
	if in.Title == "" {
		return 0, errors.New("workflow title cannot be empty")
	}
	if len(in.Title) > 100 {
		return 0, errors.New("workflow title too long (max 100 characters)")
	}
	if in.OwnerID == "" {
		return 0, errors.New("workflow owner cannot be empty")
	}

	if in.TemplateID != 0 {
		tpl, tplErr := s.store.GetTemplate(in.TemplateID)
		if tplErr != nil {
			return 0, errors.Wrapf(tplErr, "template %d", in.TemplateID)
		}
		in.JSONConfig = tpl.JSONConfig
		if in.Category == "" {
			in.Category = tpl.Category
		}
	}
	if in.JSONConfig != "" {
		if _, parseErr := models.ParseGraphConfig(in.JSONConfig); parseErr != nil {
			return 0, errors.Wrap(ErrMalformedConfig, parseErr.Error())
		}
	}

	txStore, err := s.store.Begin()
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	wf := models.Workflow{
		OwnerID:     in.OwnerID,
		OrgID:       in.OrgID,
		Title:       in.Title,
		Description: in.Description,
		Prompt:      in.Prompt,
		JSONConfig:  in.JSONConfig,
		Category:    in.Category,
		Status:      models.DraftWorkflowStatus,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	id, err = txStore.SaveWorkflow(wf)
	if err != nil {
		return 0, err
	}
	s.logger.Infof("Created workflow '%s' with ID %d", in.Title, id)
	return id, nil
}

// GetWorkflow fetches a workflow by ID.
func (s *WorkflowService) GetWorkflow(workflowID int64) (models.Workflow, error) {
	wf, err := s.store.GetWorkflow(workflowID)
	if err != nil {
		return models.Workflow{}, errors.Wrapf(err, "get workflow %d", workflowID)
	}
	return wf, nil
}

func (s *WorkflowService) ListWorkflows(ownerID string) ([]models.Workflow, error) {
	return s.store.ListWorkflows(ownerID)
}

// ActivateWorkflow transitions a draft or paused workflow to active, making
// it runnable.
func (s *WorkflowService) ActivateWorkflow(id int64) error {
	return s.transition(id, models.ActiveWorkflowStatus, func(from models.WorkflowStatus) bool {
		return from == models.DraftWorkflowStatus || from == models.PausedWorkflowStatus || from == models.FailedWorkflowStatus
	})
}

// DeactivateWorkflow pauses an active workflow.
func (s *WorkflowService) DeactivateWorkflow(id int64) error {
	return s.transition(id, models.PausedWorkflowStatus, func(from models.WorkflowStatus) bool {
		return from == models.ActiveWorkflowStatus
	})
}

// UpdateWorkflowStatus sets an arbitrary valid status. Used by external
// integrations that mark workflows failed.
func (s *WorkflowService) UpdateWorkflowStatus(id int64, status string) error {
	wfStatus := models.WorkflowStatus(status)
	switch wfStatus {
	case models.DraftWorkflowStatus, models.ActiveWorkflowStatus,
		models.PausedWorkflowStatus, models.FailedWorkflowStatus:
		// Valid status, proceed
	default:
		return errors.New("invalid status; must be 'draft', 'active', 'paused', or 'failed'")
	}
	return s.transition(id, wfStatus, func(models.WorkflowStatus) bool { return true })
}

func (s *WorkflowService) transition(id int64, to models.WorkflowStatus, allowed func(models.WorkflowStatus) bool) (err error) {
	if id <= 0 {
		return errors.New("workflow ID must be positive")
	}

	txStore, err := s.store.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	wf, err := txStore.GetWorkflow(id)
	if err != nil {
		return err
	}
	if !allowed(wf.Status) {
		return errors.Errorf("cannot transition workflow %d from %q to %q", id, wf.Status, to)
	}
	if err = txStore.UpdateWorkflowStatus(wf.ID, to); err != nil {
		return err
	}
	s.logger.Infof("Updated workflow ID %d to status '%s'", id, to)
	return nil
}

func (s *WorkflowService) DeleteWorkflow(id int64) error {
	if err := s.store.DeleteWorkflow(id); err != nil {
		return errors.Wrapf(err, "delete workflow %d", id)
	}
	s.logger.Infof("Deleted workflow ID %d", id)
	return nil
}

// ListRuns returns the run history of a workflow, newest first.
func (s *WorkflowService) ListRuns(workflowID int64) ([]models.WorkflowRun, error) {
	return s.store.ListRuns(workflowID)
}

// GetRunLogs returns a run's persisted trace in append order.
func (s *WorkflowService) GetRunLogs(runID int64) ([]models.RunLog, error) {
	if _, err := s.store.GetRun(runID); err != nil {
		return nil, errors.Wrapf(err, "get run %d", runID)
	}
	return s.store.ListRunLogs(runID)
}

func (s *WorkflowService) ListNotifications(orgID string) ([]models.Notification, error) {
	return s.store.ListNotifications(orgID)
}

func (s *WorkflowService) MarkNotificationRead(id int64) error {
	return s.store.MarkNotificationRead(id)
}

func (s *WorkflowService) ListTemplates() ([]models.Template, error) {
	return s.store.ListTemplates()
}
