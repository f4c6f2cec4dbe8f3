package storage_test

import (
	"testing"
	"time"

	internal_storage "github.com/anirazizfsm-maker/ai-workflow-builder-sub000/internal/storage"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/internal/testutil"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/storage"
	"github.com/stretchr/testify/assert"
)

func TestPostgresStore(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	defer testDB.Teardown(t)

	// Helper to create a transactional store, rolled back after each subtest
	newTxStore := func(t *testing.T) storage.Store {
		store, err := internal_storage.NewPostgresStore(testDB.ConnStr)
		assert.NoError(t, err)
		txStore, err := store.Begin()
		assert.NoError(t, err)
		t.Cleanup(func() { txStore.Rollback() })
		return txStore
	}

	newWorkflow := func(status models.WorkflowStatus) models.Workflow {
		return models.Workflow{
			OwnerID:    "user1",
			OrgID:      "org1",
			Title:      "TestWorkflow",
			JSONConfig: `{"nodes":[],"edges":[]}`,
			Category:   "marketing",
			Status:     status,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
	}

	t.Run("SaveAndGetWorkflow", func(t *testing.T) {
		store := newTxStore(t)
		wfID, err := store.SaveWorkflow(newWorkflow(models.DraftWorkflowStatus))
		assert.NoError(t, err)
		assert.Greater(t, wfID, int64(0))

		saved, err := store.GetWorkflow(wfID)
		assert.NoError(t, err)
		assert.Equal(t, "TestWorkflow", saved.Title)
		assert.Equal(t, models.DraftWorkflowStatus, saved.Status)
		assert.Equal(t, "org1", saved.OrgID)
	})

	t.Run("GetNonExistingWorkflow", func(t *testing.T) {
		store := newTxStore(t)
		_, err := store.GetWorkflow(123456)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateWorkflowStatus", func(t *testing.T) {
		store := newTxStore(t)
		wfID, err := store.SaveWorkflow(newWorkflow(models.DraftWorkflowStatus))
		assert.NoError(t, err)

		assert.NoError(t, store.UpdateWorkflowStatus(wfID, models.ActiveWorkflowStatus))
		updated, err := store.GetWorkflow(wfID)
		assert.NoError(t, err)
		assert.Equal(t, models.ActiveWorkflowStatus, updated.Status)

		assert.ErrorIs(t, store.UpdateWorkflowStatus(123456, models.ActiveWorkflowStatus), storage.ErrNotFound)
	})

	t.Run("ListWorkflowsByOwner", func(t *testing.T) {
		store := newTxStore(t)
		wf := newWorkflow(models.DraftWorkflowStatus)
		_, err := store.SaveWorkflow(wf)
		assert.NoError(t, err)
		wf.OwnerID = "user2"
		_, err = store.SaveWorkflow(wf)
		assert.NoError(t, err)

		mine, err := store.ListWorkflows("user1")
		assert.NoError(t, err)
		assert.Len(t, mine, 1)

		all, err := store.ListWorkflows("")
		assert.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("DeleteWorkflowCascadesRuns", func(t *testing.T) {
		store := newTxStore(t)
		wfID, err := store.SaveWorkflow(newWorkflow(models.ActiveWorkflowStatus))
		assert.NoError(t, err)
		runID, err := store.SaveRun(models.WorkflowRun{
			WorkflowID: wfID, OrgID: "org1", Status: models.RunningRunStatus,
			Category: "general", StartedAt: time.Now(),
		})
		assert.NoError(t, err)

		assert.NoError(t, store.DeleteWorkflow(wfID))
		_, err = store.GetWorkflow(wfID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.GetRun(runID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("RunLifecycle", func(t *testing.T) {
		store := newTxStore(t)
		wfID, err := store.SaveWorkflow(newWorkflow(models.ActiveWorkflowStatus))
		assert.NoError(t, err)

		runID, err := store.SaveRun(models.WorkflowRun{
			WorkflowID: wfID, OrgID: "org1", Status: models.RunningRunStatus,
			Category: "marketing", StartedAt: time.Now(),
		})
		assert.NoError(t, err)

		assert.NoError(t, store.UpdateRunStatus(runID, models.FailedRunStatus, 1.5, "boom"))
		run, err := store.GetRun(runID)
		assert.NoError(t, err)
		assert.Equal(t, models.FailedRunStatus, run.Status)
		assert.Equal(t, 1.5, run.Duration)
		assert.Equal(t, "boom", run.ErrorMsg)

		runs, err := store.ListRuns(wfID)
		assert.NoError(t, err)
		assert.Len(t, runs, 1)
	})

	t.Run("RunCounts", func(t *testing.T) {
		store := newTxStore(t)
		wfID, err := store.SaveWorkflow(newWorkflow(models.ActiveWorkflowStatus))
		assert.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := store.SaveRun(models.WorkflowRun{
				WorkflowID: wfID, OrgID: "org1", Status: models.FailedRunStatus,
				Category: "general", StartedAt: time.Now(),
			})
			assert.NoError(t, err)
		}
		_, err = store.SaveRun(models.WorkflowRun{
			WorkflowID: wfID, OrgID: "org1", Status: models.SuccessRunStatus,
			Category: "general", StartedAt: time.Now(),
		})
		assert.NoError(t, err)

		since := time.Now().Add(-24 * time.Hour)
		failed, err := store.CountFailedRunsSince(wfID, since)
		assert.NoError(t, err)
		assert.Equal(t, 3, failed)

		total, err := store.CountRunsSince("org1", since)
		assert.NoError(t, err)
		assert.Equal(t, 4, total)

		none, err := store.CountRunsSince("org1", time.Now().Add(time.Hour))
		assert.NoError(t, err)
		assert.Equal(t, 0, none)
	})

	t.Run("RunLogsKeepAppendOrder", func(t *testing.T) {
		store := newTxStore(t)
		wfID, err := store.SaveWorkflow(newWorkflow(models.ActiveWorkflowStatus))
		assert.NoError(t, err)
		runID, err := store.SaveRun(models.WorkflowRun{
			WorkflowID: wfID, OrgID: "org1", Status: models.RunningRunStatus,
			Category: "general", StartedAt: time.Now(),
		})
		assert.NoError(t, err)

		assert.NoError(t, store.AppendRunLog(runID, "Executing Trigger"))
		assert.NoError(t, store.AppendRunLog(runID, "✅ Trigger completed"))
		assert.NoError(t, store.AppendRunLog(runID, "Executing Send email"))

		logs, err := store.ListRunLogs(runID)
		assert.NoError(t, err)
		assert.Len(t, logs, 3)
		assert.Equal(t, 0, logs[0].Seq)
		assert.Equal(t, "Executing Trigger", logs[0].Message)
		assert.Equal(t, 2, logs[2].Seq)
		assert.Equal(t, "Executing Send email", logs[2].Message)
	})

	t.Run("Notifications", func(t *testing.T) {
		store := newTxStore(t)
		id, err := store.SaveNotification(models.Notification{
			OrgID: "org1", Kind: models.WorkflowFailedNotification,
			Message: "failed a lot", Severity: models.ErrorSeverity,
		})
		assert.NoError(t, err)

		list, err := store.ListNotifications("org1")
		assert.NoError(t, err)
		assert.Len(t, list, 1)
		assert.Nil(t, list[0].ReadAt)

		count, err := store.CountUnreadNotifications("org1", time.Now().Add(-24*time.Hour))
		assert.NoError(t, err)
		assert.Equal(t, 1, count)

		assert.NoError(t, store.MarkNotificationRead(id))
		list, err = store.ListNotifications("org1")
		assert.NoError(t, err)
		assert.NotNil(t, list[0].ReadAt)
	})

	t.Run("Templates", func(t *testing.T) {
		store := newTxStore(t)
		id, err := store.SaveTemplate(models.Template{
			Name: "Lead capture", Category: "marketing",
			Keywords: "lead, form", JSONConfig: `{"nodes":[],"edges":[]}`,
		})
		assert.NoError(t, err)

		tpl, err := store.GetTemplate(id)
		assert.NoError(t, err)
		assert.Equal(t, "Lead capture", tpl.Name)

		all, err := store.ListTemplates()
		assert.NoError(t, err)
		assert.Len(t, all, 1)

		_, err = store.GetTemplate(123456)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
