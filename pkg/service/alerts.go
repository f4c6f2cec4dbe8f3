package service

import (
	"fmt"
	"time"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/storage"
)

const (
	// FailureBurstThreshold is the failed-run count per workflow, within the
	// alert window, at which a workflow_failed notification fires.
	FailureBurstThreshold = 3

	// UsageThreshold is the org-wide run count, within the alert window, at
	// which a usage_threshold notification fires.
	UsageThreshold = 80

	// AlertWindow is the trailing interval both rules count over.
	AlertWindow = 24 * time.Hour
)

// AlertService derives operational notifications from run outcomes. Both
// rules fire on every completed run once their threshold holds: emission is
// deliberately not deduplicated, so a 4th failure after a burst alert
// produces a second alert. With concurrent runs the counts race, making
// emission at-least-once rather than exactly-once.
type AlertService struct {
	store  storage.Store
	logger Logger
	now    func() time.Time
}

func NewAlertService(store storage.Store, logger Logger) *AlertService {
	return &AlertService{store: store, logger: logger, now: time.Now}
}

// RunCompleted evaluates the threshold rules against a run that just made its
// terminal transition. Rule failures are logged, not propagated: a run's
// outcome never depends on notification delivery.
func (a *AlertService) RunCompleted(run models.WorkflowRun) {
	since := a.now().Add(-AlertWindow)

	if run.Status == models.FailedRunStatus {
		failed, err := a.store.CountFailedRunsSince(run.WorkflowID, since)
		if err != nil {
			a.logger.Errorf("Failed to count failed runs for workflow %d: %v", run.WorkflowID, err)
		} else if failed >= FailureBurstThreshold {
			a.notify(models.Notification{
				OrgID:    run.OrgID,
				Kind:     models.WorkflowFailedNotification,
				Severity: models.ErrorSeverity,
				Message:  fmt.Sprintf("Workflow %d failed %d times in the last 24 hours", run.WorkflowID, failed),
			})
		}
	}

	total, err := a.store.CountRunsSince(run.OrgID, since)
	if err != nil {
		a.logger.Errorf("Failed to count runs for org %s: %v", run.OrgID, err)
		return
	}
	if total >= UsageThreshold {
		a.notify(models.Notification{
			OrgID:    run.OrgID,
			Kind:     models.UsageThresholdNotification,
			Severity: models.WarningSeverity,
			Message:  fmt.Sprintf("Organization used %d workflow runs in the last 24 hours", total),
		})
	}
}

// UnreadCount returns the dashboard badge count: notifications still unread
// or created within the alert window.
func (a *AlertService) UnreadCount(orgID string) (int, error) {
	return a.store.CountUnreadNotifications(orgID, a.now().Add(-AlertWindow))
}

func (a *AlertService) notify(n models.Notification) {
	if _, err := a.store.SaveNotification(n); err != nil {
		a.logger.Errorf("Failed to save %s notification for org %s: %v", n.Kind, n.OrgID, err)
		return
	}
	a.logger.Infof("Notification %s (%s) for org %s: %s", n.Kind, n.Severity, n.OrgID, n.Message)
}
