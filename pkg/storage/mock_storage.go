package storage

import (
	"sync"
	"time"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
)

// mockStore implements Store with in-memory storage for unit tests.
type mockStore struct {
	mu            sync.Mutex
	workflows     []models.Workflow
	runs          []models.WorkflowRun
	runLogs       []models.RunLog
	notifications []models.Notification
	templates     []models.Template
	nextID        int64
}

func NewMockStore() Store {
	return &mockStore{}
}

// Begin returns the same store: mock transactions are flat, every write is
// immediately visible, Commit and Rollback are no-ops.
func (m *mockStore) Begin() (Store, error) { return m, nil }
func (m *mockStore) Commit() error         { return nil }
func (m *mockStore) Rollback() error       { return nil }
func (m *mockStore) Close() error          { return nil }

func (m *mockStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockStore) SaveWorkflow(w models.Workflow) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w.ID = m.id()
	m.workflows = append(m.workflows, w)
	return w.ID, nil
}

func (m *mockStore) GetWorkflow(id int64) (models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.workflows {
		if w.ID == id {
			return w, nil
		}
	}
	return models.Workflow{}, ErrNotFound
}

func (m *mockStore) ListWorkflows(ownerID string) ([]models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Workflow
	for _, w := range m.workflows {
		if ownerID == "" || w.OwnerID == ownerID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateWorkflowStatus(id int64, status models.WorkflowStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.workflows {
		if w.ID == id {
			m.workflows[i].Status = status
			m.workflows[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) DeleteWorkflow(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.workflows {
		if w.ID == id {
			m.workflows = append(m.workflows[:i], m.workflows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) SaveRun(r models.WorkflowRun) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.id()
	m.runs = append(m.runs, r)
	return r.ID, nil
}

func (m *mockStore) GetRun(id int64) (models.WorkflowRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return models.WorkflowRun{}, ErrNotFound
}

func (m *mockStore) ListRuns(workflowID int64) ([]models.WorkflowRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WorkflowRun
	for _, r := range m.runs {
		if r.WorkflowID == workflowID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateRunStatus(id int64, status models.RunStatus, duration float64, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.runs {
		if r.ID == id {
			m.runs[i].Status = status
			m.runs[i].Duration = duration
			m.runs[i].ErrorMsg = errorMsg
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) CountFailedRunsSince(workflowID int64, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.runs {
		if r.WorkflowID == workflowID && r.Status == models.FailedRunStatus && !r.StartedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockStore) CountRunsSince(orgID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.runs {
		if r.OrgID == orgID && !r.StartedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockStore) AppendRunLog(runID int64, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := 0
	for _, l := range m.runLogs {
		if l.RunID == runID {
			seq++
		}
	}
	m.runLogs = append(m.runLogs, models.RunLog{
		ID:       m.id(),
		RunID:    runID,
		Seq:      seq,
		Message:  message,
		LoggedAt: time.Now(),
	})
	return nil
}

func (m *mockStore) ListRunLogs(runID int64) ([]models.RunLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RunLog
	for _, l := range m.runLogs {
		if l.RunID == runID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockStore) SaveNotification(n models.Notification) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = m.id()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.notifications = append(m.notifications, n)
	return n.ID, nil
}

func (m *mockStore) ListNotifications(orgID string) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if n.OrgID == orgID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockStore) MarkNotificationRead(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.notifications {
		if n.ID == id {
			now := time.Now()
			m.notifications[i].ReadAt = &now
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) CountUnreadNotifications(orgID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.OrgID != orgID {
			continue
		}
		if n.ReadAt == nil || !n.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockStore) SaveTemplate(t models.Template) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	m.templates = append(m.templates, t)
	return t.ID, nil
}

func (m *mockStore) GetTemplate(id int64) (models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Template{}, ErrNotFound
}

func (m *mockStore) ListTemplates() ([]models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Template(nil), m.templates...), nil
}
