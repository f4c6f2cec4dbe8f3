package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/storage"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type DBInterface interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	QueryRowx(query string, args ...interface{}) *sqlx.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

type PostgresStore struct {
	db DBInterface
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Begin() (storage.Store, error) {
	if db, ok := s.db.(*sqlx.DB); ok {
		tx, err := db.Beginx()
		if err != nil {
			return nil, err
		}
		return &PostgresStore{db: tx}, nil
	}
	return nil, fmt.Errorf("cannot begin transaction on unknown type")
}

func (s *PostgresStore) Commit() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Commit()
	}
	return fmt.Errorf("cannot commit: not a transaction")
}

func (s *PostgresStore) Rollback() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Rollback()
	}
	return fmt.Errorf("cannot rollback: not a transaction")
}

func (s *PostgresStore) Close() error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return db.Close()
	}
	return nil // No-op for *sqlx.Tx
}

// SaveWorkflow creates a new workflow and returns its ID
func (s *PostgresStore) SaveWorkflow(w models.Workflow) (int64, error) {
	var wfID int64
	err := s.db.QueryRowx(`INSERT INTO workflows (owner_id, org_id, title, description, prompt, json_config, category, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		w.OwnerID, w.OrgID, w.Title, w.Description, w.Prompt, w.JSONConfig, w.Category, w.Status, w.CreatedAt, w.UpdatedAt).Scan(&wfID)
	if err != nil {
		return 0, fmt.Errorf("save workflow: %w", err)
	}
	return wfID, nil
}

func (s *PostgresStore) GetWorkflow(id int64) (models.Workflow, error) {
	var wf models.Workflow
	err := s.db.Get(&wf, "SELECT * FROM workflows WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.Workflow{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Workflow{}, err
	}
	return wf, nil
}

func (s *PostgresStore) ListWorkflows(ownerID string) ([]models.Workflow, error) {
	workflows := []models.Workflow{}
	if ownerID == "" {
		err := s.db.Select(&workflows, "SELECT * FROM workflows ORDER BY created_at DESC")
		return workflows, err
	}
	err := s.db.Select(&workflows, "SELECT * FROM workflows WHERE owner_id = $1 ORDER BY created_at DESC", ownerID)
	return workflows, err
}

func (s *PostgresStore) UpdateWorkflowStatus(id int64, status models.WorkflowStatus) error {
	res, err := s.db.Exec("UPDATE workflows SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteWorkflow(id int64) error {
	res, err := s.db.Exec("DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SaveRun creates a new run and returns its ID
func (s *PostgresStore) SaveRun(r models.WorkflowRun) (int64, error) {
	var runID int64
	err := s.db.QueryRowx(`INSERT INTO workflow_runs (workflow_id, org_id, status, category, duration, cost, error_msg, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		r.WorkflowID, r.OrgID, r.Status, r.Category, r.Duration, r.Cost, r.ErrorMsg, r.StartedAt).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}
	return runID, nil
}

func (s *PostgresStore) GetRun(id int64) (models.WorkflowRun, error) {
	var run models.WorkflowRun
	err := s.db.Get(&run, "SELECT * FROM workflow_runs WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.WorkflowRun{}, storage.ErrNotFound
	}
	if err != nil {
		return models.WorkflowRun{}, err
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(workflowID int64) ([]models.WorkflowRun, error) {
	runs := []models.WorkflowRun{}
	err := s.db.Select(&runs, "SELECT * FROM workflow_runs WHERE workflow_id = $1 ORDER BY started_at DESC", workflowID)
	return runs, err
}

func (s *PostgresStore) UpdateRunStatus(id int64, status models.RunStatus, duration float64, errorMsg string) error {
	res, err := s.db.Exec("UPDATE workflow_runs SET status = $1, duration = $2, error_msg = $3 WHERE id = $4",
		status, duration, errorMsg, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountFailedRunsSince(workflowID int64, since time.Time) (int, error) {
	var count int
	err := s.db.Get(&count, "SELECT COUNT(*) FROM workflow_runs WHERE workflow_id = $1 AND status = 'failed' AND started_at >= $2",
		workflowID, since)
	return count, err
}

func (s *PostgresStore) CountRunsSince(orgID string, since time.Time) (int, error) {
	var count int
	err := s.db.Get(&count, "SELECT COUNT(*) FROM workflow_runs WHERE org_id = $1 AND started_at >= $2", orgID, since)
	return count, err
}

// AppendRunLog inserts the next line of a run's trace. The sequence number is
// derived from the current line count inside the same statement, which is safe
// because a run's log writes are never concurrent (sequential walk).
func (s *PostgresStore) AppendRunLog(runID int64, message string) error {
	_, err := s.db.Exec(`INSERT INTO run_logs (run_id, seq, message, logged_at)
		SELECT $1, COALESCE(MAX(seq) + 1, 0), $2, CURRENT_TIMESTAMP FROM run_logs WHERE run_id = $1`,
		runID, message)
	return err
}

func (s *PostgresStore) ListRunLogs(runID int64) ([]models.RunLog, error) {
	logs := []models.RunLog{}
	err := s.db.Select(&logs, "SELECT * FROM run_logs WHERE run_id = $1 ORDER BY seq", runID)
	return logs, err
}

func (s *PostgresStore) SaveNotification(n models.Notification) (int64, error) {
	var id int64
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	err := s.db.QueryRowx(`INSERT INTO notifications (org_id, kind, message, severity, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		n.OrgID, n.Kind, n.Message, n.Severity, n.ReadAt, createdAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save notification: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) ListNotifications(orgID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := s.db.Select(&notifications, "SELECT * FROM notifications WHERE org_id = $1 ORDER BY created_at DESC", orgID)
	return notifications, err
}

func (s *PostgresStore) MarkNotificationRead(id int64) error {
	res, err := s.db.Exec("UPDATE notifications SET read_at = CURRENT_TIMESTAMP WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountUnreadNotifications(orgID string, since time.Time) (int, error) {
	var count int
	err := s.db.Get(&count, "SELECT COUNT(*) FROM notifications WHERE org_id = $1 AND (read_at IS NULL OR created_at >= $2)",
		orgID, since)
	return count, err
}

func (s *PostgresStore) SaveTemplate(t models.Template) (int64, error) {
	var id int64
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	err := s.db.QueryRowx(`INSERT INTO templates (name, description, category, keywords, json_config, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		t.Name, t.Description, t.Category, t.Keywords, t.JSONConfig, createdAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save template: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetTemplate(id int64) (models.Template, error) {
	var t models.Template
	err := s.db.Get(&t, "SELECT * FROM templates WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.Template{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Template{}, err
	}
	return t, nil
}

func (s *PostgresStore) ListTemplates() ([]models.Template, error) {
	templates := []models.Template{}
	err := s.db.Select(&templates, "SELECT * FROM templates ORDER BY id")
	return templates, err
}
