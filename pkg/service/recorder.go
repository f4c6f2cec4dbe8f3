package service

import (
	"time"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/storage"
	"github.com/pkg/errors"
)

// DefaultRunCategory is used when the workflow carries no category of its own.
const DefaultRunCategory = "general"

// RunRecorder owns the lifecycle of a WorkflowRun and its persisted log trace.
type RunRecorder struct {
	store  storage.Store
	logger Logger
}

func NewRunRecorder(store storage.Store, logger Logger) *RunRecorder {
	return &RunRecorder{store: store, logger: logger}
}

// CreateRun inserts a run in "running" state and returns its ID.
func (r *RunRecorder) CreateRun(wf models.Workflow) (int64, error) {
	category := wf.Category
	if category == "" {
		category = DefaultRunCategory
	}
	runID, err := r.store.SaveRun(models.WorkflowRun{
		WorkflowID: wf.ID,
		OrgID:      wf.OrgID,
		Status:     models.RunningRunStatus,
		Category:   category,
		Duration:   0,
		StartedAt:  time.Now(),
	})
	if err != nil {
		return 0, errors.Wrap(err, "create run")
	}
	return runID, nil
}

// FinishRun makes the run's terminal transition and computes its duration as
// the wall-clock delta from creation. The caller must invoke this exactly
// once per run; a second call would silently overwrite the duration.
func (r *RunRecorder) FinishRun(runID int64, status models.RunStatus, errorMsg string) (models.WorkflowRun, error) {
	run, err := r.store.GetRun(runID)
	if err != nil {
		return models.WorkflowRun{}, errors.Wrapf(err, "finish run %d", runID)
	}
	duration := time.Since(run.StartedAt).Seconds()
	if err := r.store.UpdateRunStatus(runID, status, duration, errorMsg); err != nil {
		return models.WorkflowRun{}, errors.Wrapf(err, "finish run %d", runID)
	}
	run.Status = status
	run.Duration = duration
	run.ErrorMsg = errorMsg
	return run, nil
}

// AddLog appends one line to the run's ordered trace.
func (r *RunRecorder) AddLog(runID int64, message string) error {
	if err := r.store.AppendRunLog(runID, message); err != nil {
		r.logger.Errorf("Failed to append log for run %d: %v", runID, err)
		return err
	}
	r.logger.Infof("[run %d] %s", runID, message)
	return nil
}
