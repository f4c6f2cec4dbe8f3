package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	internal_http "github.com/anirazizfsm-maker/ai-workflow-builder-sub000/internal/http"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/storage"
	"github.com/stretchr/testify/assert"
)

func TestServer(t *testing.T) {
	newServer := func() (*httptest.Server, storage.Store) {
		store := storage.NewMockStore()
		srv := httptest.NewServer(internal_http.NewMux(store))
		return srv, store
	}

	postJSON := func(t *testing.T, srv *httptest.Server, path string, body interface{}) *http.Response {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		resp, err := srv.Client().Post(srv.URL+path, "application/json", bytes.NewReader(raw))
		assert.NoError(t, err)
		return resp
	}

	decode := func(t *testing.T, resp *http.Response, dest interface{}) {
		defer resp.Body.Close()
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}

	t.Run("HealthCheck", func(t *testing.T) {
		srv, _ := newServer()
		defer srv.Close()

		resp, err := srv.Client().Get(srv.URL + "/health")
		assert.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "flowd server is running", string(body))
	})

	t.Run("CreateAndGetWorkflow", func(t *testing.T) {
		srv, _ := newServer()
		defer srv.Close()

		resp := postJSON(t, srv, "/v1/workflows", map[string]interface{}{
			"owner_id": "user1",
			"org_id":   "org1",
			"title":    "My workflow",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var created map[string]int64
		decode(t, resp, &created)
		assert.Greater(t, created["id"], int64(0))

		getResp, err := srv.Client().Get(fmt.Sprintf("%s/v1/workflows/%d", srv.URL, created["id"]))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, getResp.StatusCode)
		var wf models.Workflow
		decode(t, getResp, &wf)
		assert.Equal(t, "My workflow", wf.Title)
		assert.Equal(t, models.DraftWorkflowStatus, wf.Status)
	})

	t.Run("CreateWorkflowValidation", func(t *testing.T) {
		srv, _ := newServer()
		defer srv.Close()

		resp := postJSON(t, srv, "/v1/workflows", map[string]interface{}{"owner_id": "user1"})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		resp.Body.Close()

		resp = postJSON(t, srv, "/v1/workflows", map[string]interface{}{
			"owner_id": "user1", "title": "bad config", "json_config": "{nodes",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("GetMissingWorkflow", func(t *testing.T) {
		srv, _ := newServer()
		defer srv.Close()

		resp, err := srv.Client().Get(srv.URL + "/v1/workflows/999")
		assert.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("RunRequiresActiveWorkflow", func(t *testing.T) {
		srv, _ := newServer()
		defer srv.Close()

		resp := postJSON(t, srv, "/v1/workflows", map[string]interface{}{
			"owner_id": "user1", "org_id": "org1", "title": "wf",
			"json_config": `{"nodes":[{"id":"t","type":"trigger","data":{"label":"Form"}}],"edges":[]}`,
		})
		var created map[string]int64
		decode(t, resp, &created)
		id := created["id"]

		runResp := postJSON(t, srv, fmt.Sprintf("/v1/workflows/%d/run?user=user1", id), nil)
		assert.Equal(t, http.StatusConflict, runResp.StatusCode)
		runResp.Body.Close()

		actResp := postJSON(t, srv, fmt.Sprintf("/v1/workflows/%d/activate", id), nil)
		assert.Equal(t, http.StatusOK, actResp.StatusCode)
		actResp.Body.Close()

		runResp = postJSON(t, srv, fmt.Sprintf("/v1/workflows/%d/run?user=user1", id), nil)
		assert.Equal(t, http.StatusOK, runResp.StatusCode)
		var result map[string]interface{}
		decode(t, runResp, &result)
		assert.Equal(t, true, result["success"])

		runsResp, err := srv.Client().Get(fmt.Sprintf("%s/v1/workflows/%d/runs", srv.URL, id))
		assert.NoError(t, err)
		var runs []models.WorkflowRun
		decode(t, runsResp, &runs)
		assert.Len(t, runs, 1)
		assert.Equal(t, models.SuccessRunStatus, runs[0].Status)

		logsResp, err := srv.Client().Get(fmt.Sprintf("%s/v1/runs/%d/logs", srv.URL, runs[0].ID))
		assert.NoError(t, err)
		var logs []models.RunLog
		decode(t, logsResp, &logs)
		assert.Len(t, logs, 2)
		assert.Equal(t, "Executing Form", logs[0].Message)
	})

	t.Run("DeactivateThenDelete", func(t *testing.T) {
		srv, _ := newServer()
		defer srv.Close()

		resp := postJSON(t, srv, "/v1/workflows", map[string]interface{}{
			"owner_id": "user1", "title": "wf",
		})
		var created map[string]int64
		decode(t, resp, &created)
		id := created["id"]

		actResp := postJSON(t, srv, fmt.Sprintf("/v1/workflows/%d/activate", id), nil)
		actResp.Body.Close()
		deactResp := postJSON(t, srv, fmt.Sprintf("/v1/workflows/%d/deactivate", id), nil)
		assert.Equal(t, http.StatusOK, deactResp.StatusCode)
		deactResp.Body.Close()

		req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/v1/workflows/%d", srv.URL, id), nil)
		assert.NoError(t, err)
		delResp, err := srv.Client().Do(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, delResp.StatusCode)
		delResp.Body.Close()
	})

	t.Run("Notifications", func(t *testing.T) {
		srv, store := newServer()
		defer srv.Close()

		id, err := store.SaveNotification(models.Notification{
			OrgID: "org1", Kind: models.SystemNotification,
			Message: "hello", Severity: models.InfoSeverity,
		})
		assert.NoError(t, err)

		resp, err := srv.Client().Get(srv.URL + "/v1/notifications?org=org1")
		assert.NoError(t, err)
		var payload struct {
			Notifications []models.Notification `json:"notifications"`
			UnreadCount   int                   `json:"unread_count"`
		}
		decode(t, resp, &payload)
		assert.Len(t, payload.Notifications, 1)
		assert.Equal(t, 1, payload.UnreadCount)

		readResp := postJSON(t, srv, fmt.Sprintf("/v1/notifications/%d/read", id), nil)
		assert.Equal(t, http.StatusOK, readResp.StatusCode)
		readResp.Body.Close()
	})

	t.Run("AIBuilderParse", func(t *testing.T) {
		srv, store := newServer()
		defer srv.Close()

		_, err := store.SaveTemplate(models.Template{
			Name: "Lead capture", Category: "marketing", Keywords: "lead, form",
		})
		assert.NoError(t, err)

		resp := postJSON(t, srv, "/v1/ai-builder/parse", map[string]string{
			"prompt": "capture every lead from the contact form",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var parsed map[string]interface{}
		decode(t, resp, &parsed)
		assert.Equal(t, true, parsed["matched"])

		resp = postJSON(t, srv, "/v1/ai-builder/parse", map[string]string{"prompt": "unrelated"})
		var unmatched map[string]interface{}
		decode(t, resp, &unmatched)
		assert.Equal(t, false, unmatched["matched"])

		resp = postJSON(t, srv, "/v1/ai-builder/parse", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("BillingWebhook", func(t *testing.T) {
		srv, store := newServer()
		defer srv.Close()

		resp := postJSON(t, srv, "/v1/billing/webhook", map[string]interface{}{
			"provider": "stripe",
			"event":    "invoice.paid",
			"org_id":   "org1",
			"amount":   29.0,
			"currency": "USD",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var payload map[string]string
		decode(t, resp, &payload)
		assert.NotEmpty(t, payload["event_id"])

		notifications, err := store.ListNotifications("org1")
		assert.NoError(t, err)
		assert.Len(t, notifications, 1)
		assert.Equal(t, models.SystemNotification, notifications[0].Kind)

		resp = postJSON(t, srv, "/v1/billing/webhook", map[string]interface{}{"provider": "stripe"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}
