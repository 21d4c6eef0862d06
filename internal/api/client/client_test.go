package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListRules(context.Background(), "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		notFound bool
	}{
		{
			name:    "plain body",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			wantMsg: "API error (HTTP 500): oops",
		},
		{
			name:     "problem detail",
			status:   http.StatusNotFound,
			body:     `{"title":"Not Found","status":404,"detail":"rule not found"}`,
			wantMsg:  "API error (HTTP 404): rule not found",
			notFound: true,
		},
		{
			name:    "validation errors",
			status:  http.StatusUnprocessableEntity,
			body:    `{"detail":"validation failed","errors":[{"message":"expected number","location":"body.threshold"}]}`,
			wantMsg: "validation failed; body.threshold expected number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.GetRule(context.Background(), "r1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, tt.notFound, IsNotFound(err))

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestClient_ListRules(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rules", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("owner_id"))
		assert.Equal(t, "true", r.URL.Query().Get("active_only"))
		writeJSON(w, http.StatusOK, map[string]any{
			"rules": []domain.AlertRule{{ID: "r1", OwnerID: "alice", EntityID: "AAPL"}},
		})
	})

	rules, err := c.ListRules(context.Background(), "alice", true)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "AAPL", rules[0].EntityID)
}

func TestClient_CreateRule(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req RuleRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.OperatorGTE, req.Operator)
		assert.Nil(t, req.Active)

		writeJSON(w, http.StatusCreated, domain.AlertRule{
			ID:        "r-created",
			OwnerID:   req.OwnerID,
			EntityID:  req.EntityID,
			Condition: domain.Condition{Operator: req.Operator, Threshold: req.Threshold},
			Active:    true,
		})
	})

	rule, err := c.CreateRule(context.Background(), RuleRequest{
		OwnerID:   "alice",
		EntityID:  "AAPL",
		Operator:  domain.OperatorGTE,
		Threshold: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, "r-created", rule.ID)
	assert.InDelta(t, 200, rule.Condition.Threshold, 0.0001)
}

func TestClient_RuleMutations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		wantMethod string
		wantPath   string
		call       func(c *Client) error
	}{
		{
			name:       "update",
			wantMethod: http.MethodPut,
			wantPath:   "/api/v1/rules/r1",
			call: func(c *Client) error {
				threshold := 150.0
				_, err := c.UpdateRule(context.Background(), "r1", RuleUpdate{Threshold: &threshold})
				return err
			},
		},
		{
			name:       "deactivate",
			wantMethod: http.MethodPost,
			wantPath:   "/api/v1/rules/r1/deactivate",
			call: func(c *Client) error {
				_, err := c.DeactivateRule(context.Background(), "r1")
				return err
			},
		},
		{
			name:       "delete",
			wantMethod: http.MethodDelete,
			wantPath:   "/api/v1/rules/r1",
			call: func(c *Client) error {
				return c.DeleteRule(context.Background(), "r1")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantMethod, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.Path)
				if r.Method == http.MethodDelete {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				writeJSON(w, http.StatusOK, domain.AlertRule{ID: "r1"})
			})

			require.NoError(t, tt.call(c))
		})
	}
}

func TestClient_ListNotifications(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "alice", q.Get("owner_id"))
		assert.Equal(t, "delivered", q.Get("status"))
		assert.Equal(t, "true", q.Get("unread_only"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Empty(t, q.Get("offset"))
		writeJSON(w, http.StatusOK, NotificationList{
			Notifications: []domain.Notification{{ID: "n1"}},
			Total:         1,
			Limit:         10,
		})
	})

	page, err := c.ListNotifications(context.Background(), "alice", domain.NotificationFilter{
		Status:     domain.NotificationDelivered,
		UnreadOnly: true,
		Limit:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "n1", page.Notifications[0].ID)
}

func TestClient_GetNotification(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/notifications/n1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"n1","status":"delivered","attempts":[{"id":"a1","channel":"email"}]}`))
	})

	n, err := c.GetNotification(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationDelivered, n.Status)
	require.Len(t, n.Attempts, 1)
	assert.Equal(t, domain.ChannelEmail, n.Attempts[0].Channel)
}

func TestClient_SendSystemNotification(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/notifications/system", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["owner_id"])
		assert.Equal(t, "Maintenance", body["title"])
		assert.NotContains(t, body, "category")

		_, _ = w.Write([]byte(`{"notification":null,"attempts":[],"suppressed":["email"]}`))
	})

	res, err := c.SendSystemNotification(context.Background(), "alice", domain.SystemPayload{Title: "Maintenance"})
	require.NoError(t, err)
	assert.Nil(t, res.Notification)
	assert.Equal(t, []domain.Channel{domain.ChannelEmail}, res.Suppressed)
}

func TestClient_SetChannels(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/owners/alice/channels", r.URL.Path)

		var body struct {
			Contacts []domain.ChannelContact `json:"contacts"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, domain.ChannelPreferences{OwnerID: "alice", Contacts: body.Contacts})
	})

	prefs, err := c.SetChannels(context.Background(), "alice", []domain.ChannelContact{
		{Channel: domain.ChannelEmail, Address: "a@example.com", Enabled: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.Channel{domain.ChannelEmail}, prefs.Enabled())
}

func TestClient_ListSuppressions(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/owners/alice/suppressions", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]any{
			"suppressions": []domain.SuppressedTrigger{{ID: "s1", Channel: domain.ChannelSMS}},
		})
	})

	got, err := c.ListSuppressions(context.Background(), "alice", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ChannelSMS, got[0].Channel)
}

func TestClient_SubmitObservations(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC)
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Observations []map[string]any `json:"observations"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if assert.Len(t, body.Observations, 2) {
			assert.Equal(t, "2026-03-02T15:04:05Z", body.Observations[0]["timestamp"])
			assert.NotContains(t, body.Observations[1], "timestamp")
		}
		writeJSON(w, http.StatusAccepted, map[string]int{"accepted": 2})
	})

	n, err := c.SubmitObservations(context.Background(), []domain.Observation{
		{EntityID: "AAPL", Metric: domain.MetricPrice, Value: 190, Timestamp: ts},
		{EntityID: "MSFT", Value: 410},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
