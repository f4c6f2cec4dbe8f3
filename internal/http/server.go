package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/internal/log"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/service"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NewMux wires the management surface: workflow CRUD and activation, run
// start and history, run logs, notifications, the builder's template
// matcher, and the billing webhook.
func NewMux(store storage.Store) *http.ServeMux {
	logger := log.GetLogger()
	svc := service.NewWorkflowService(store, logger)
	runner := service.NewWorkflowRunner(store, logger)
	matcher := service.NewTemplateMatcher(store, logger)
	alerts := service.NewAlertService(store, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/v1/workflows", WorkflowsHandler(svc))
	mux.HandleFunc("/v1/workflows/", WorkflowByIDHandler(svc, runner))
	mux.HandleFunc("/v1/runs/", RunLogsHandler(svc))
	mux.HandleFunc("/v1/notifications", NotificationsHandler(svc, alerts))
	mux.HandleFunc("/v1/notifications/", NotificationReadHandler(svc))
	mux.HandleFunc("/v1/ai-builder/parse", AIBuilderHandler(matcher))
	mux.HandleFunc("/v1/billing/webhook", BillingWebhookHandler(store))
	return mux
}

func StartServer(port string, store storage.Store) error {
	log.GetLogger().Infof("Starting flowd server on :%s", port)
	return http.ListenAndServe(":"+port, NewMux(store))
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "flowd server is running")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetLogger().Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrWorkflowNotActive):
		status = http.StatusConflict
	case errors.Is(err, service.ErrMalformedConfig), errors.Is(err, service.ErrUnknownNodeType):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type createWorkflowRequest struct {
	OwnerID     string `json:"owner_id"`
	OrgID       string `json:"org_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
	JSONConfig  string `json:"json_config"`
	Category    string `json:"category"`
	TemplateID  int64  `json:"template_id"`
}

func WorkflowsHandler(svc *service.WorkflowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			workflows, err := svc.ListWorkflows(r.URL.Query().Get("owner"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, workflows)
		case http.MethodPost:
			var req createWorkflowRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
				return
			}
			id, err := svc.CreateWorkflow(service.CreateWorkflowInput{
				OwnerID:     req.OwnerID,
				OrgID:       req.OrgID,
				Title:       req.Title,
				Description: req.Description,
				Prompt:      req.Prompt,
				JSONConfig:  req.JSONConfig,
				Category:    req.Category,
				TemplateID:  req.TemplateID,
			})
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// WorkflowByIDHandler routes /v1/workflows/{id} and its activate,
// deactivate, run and runs subpaths.
func WorkflowByIDHandler(svc *service.WorkflowService, runner *service.WorkflowRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/v1/workflows/")
		parts := strings.SplitN(rest, "/", 2)
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workflow id"})
			return
		}
		action := ""
		if len(parts) == 2 {
			action = parts[1]
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			wf, err := svc.GetWorkflow(id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, wf)
		case action == "" && r.Method == http.MethodDelete:
			if err := svc.DeleteWorkflow(id); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case action == "activate" && r.Method == http.MethodPost:
			if err := svc.ActivateWorkflow(id); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
		case action == "deactivate" && r.Method == http.MethodPost:
			if err := svc.DeactivateWorkflow(id); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
		case action == "run" && r.Method == http.MethodPost:
			userID := r.URL.Query().Get("user")
			result, err := runner.StartRun(r.Context(), id, userID)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, result)
		case action == "runs" && r.Method == http.MethodGet:
			runs, err := svc.ListRuns(id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, runs)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// RunLogsHandler serves GET /v1/runs/{id}/logs.
func RunLogsHandler(svc *service.WorkflowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[1] != "logs" {
			http.NotFound(w, r)
			return
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
			return
		}
		logs, err := svc.GetRunLogs(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, logs)
	}
}

func NotificationsHandler(svc *service.WorkflowService, alerts *service.AlertService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		orgID := r.URL.Query().Get("org")
		notifications, err := svc.ListNotifications(orgID)
		if err != nil {
			writeError(w, err)
			return
		}
		unread, err := alerts.UnreadCount(orgID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"notifications": notifications,
			"unread_count":  unread,
		})
	}
}

// NotificationReadHandler serves POST /v1/notifications/{id}/read.
func NotificationReadHandler(svc *service.WorkflowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/v1/notifications/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[1] != "read" {
			http.NotFound(w, r)
			return
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notification id"})
			return
		}
		if err := svc.MarkNotificationRead(id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
	}
}

// AIBuilderHandler serves POST /v1/ai-builder/parse: keyword-match a prompt
// against the template catalog.
func AIBuilderHandler(matcher *service.TemplateMatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing prompt"})
			return
		}
		result, err := matcher.Match(req.Prompt)
		if err != nil {
			writeError(w, err)
			return
		}
		if result == nil {
			writeJSON(w, http.StatusOK, map[string]interface{}{"matched": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"matched": true, "result": result})
	}
}

type billingWebhookRequest struct {
	Provider string  `json:"provider"`
	Event    string  `json:"event"`
	OrgID    string  `json:"org_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// BillingWebhookHandler maps provider webhook payloads onto a system
// notification for the org's dashboard. No billing state is derived here.
func BillingWebhookHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req billingWebhookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if req.OrgID == "" || req.Event == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing org_id or event"})
			return
		}
		eventID := uuid.NewString()
		message := fmt.Sprintf("Billing event %s from %s: %.2f %s (ref %s)",
			req.Event, req.Provider, req.Amount, req.Currency, eventID)
		if _, err := store.SaveNotification(billingNotification(req.OrgID, message)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"event_id": eventID})
	}
}

func billingNotification(orgID, message string) models.Notification {
	return models.Notification{
		OrgID:    orgID,
		Kind:     models.SystemNotification,
		Severity: models.InfoSeverity,
		Message:  message,
	}
}
