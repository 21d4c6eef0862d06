package notify

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

func testDelivery(recipient string) *Delivery {
	return &Delivery{
		AttemptID:      "att-1",
		NotificationID: "notif-1",
		Recipient:      recipient,
		Title:          "BTC-USD crossed 70000",
		Body:           "BTC-USD price is 71000.00 (gte 70000.00)",
		Category:       domain.CategoryPriceAlert,
		Priority:       domain.PriorityHigh,
		Data:           map[string]any{"entity_id": "BTC-USD", "value": 71000.0},
	}
}

func TestPushSender_Send(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		recipient  string
		statusCode int
		respBody   string
		wantKind   OutcomeKind
		wantReason string
	}{
		{
			name:       "accepted",
			recipient:  "device-token",
			statusCode: http.StatusOK,
			respBody:   `{"success":1,"failure":0,"results":[{"message_id":"m1"}]}`,
			wantKind:   Succeeded,
		},
		{
			name:       "accepted without body",
			recipient:  "device-token",
			statusCode: http.StatusNoContent,
			wantKind:   Succeeded,
		},
		{
			name:       "rate limited",
			recipient:  "device-token",
			statusCode: http.StatusTooManyRequests,
			wantKind:   TransientFailure,
			wantReason: "rate limited",
		},
		{
			name:       "gateway 500",
			recipient:  "device-token",
			statusCode: http.StatusInternalServerError,
			respBody:   "boom",
			wantKind:   TransientFailure,
			wantReason: "500",
		},
		{
			name:       "bad request",
			recipient:  "device-token",
			statusCode: http.StatusBadRequest,
			respBody:   "bad payload",
			wantKind:   PermanentFailure,
			wantReason: "bad payload",
		},
		{
			name:       "unregistered token",
			recipient:  "stale-token",
			statusCode: http.StatusOK,
			respBody:   `{"success":0,"failure":1,"results":[{"error":"NotRegistered"}]}`,
			wantKind:   PermanentFailure,
			wantReason: "NotRegistered",
		},
		{
			name:       "gateway unavailable result",
			recipient:  "device-token",
			statusCode: http.StatusOK,
			respBody:   `{"success":0,"failure":1,"results":[{"error":"Unavailable"}]}`,
			wantKind:   TransientFailure,
			wantReason: "Unavailable",
		},
		{
			name:       "empty token",
			recipient:  " ",
			statusCode: http.StatusOK,
			wantKind:   PermanentFailure,
			wantReason: "device token is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got pushPayload
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "key=server-key", r.Header.Get("Authorization"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.respBody))
			}))
			defer srv.Close()

			s := NewPushSender(srv.URL, "server-key", WithPushHTTPClient(srv.Client()))
			out := s.Send(context.Background(), testDelivery(tt.recipient))

			assert.Equal(t, tt.wantKind, out.Kind, out.Reason)
			if tt.wantReason != "" {
				assert.Contains(t, out.Reason, tt.wantReason)
			}
			if tt.wantKind == Succeeded {
				assert.Equal(t, "device-token", got.To)
				assert.Equal(t, "high", got.Priority)
				assert.Equal(t, "BTC-USD crossed 70000", got.Notification.Title)
				assert.Equal(t, "notif-1", got.Data["notification_id"])
				assert.Equal(t, "BTC-USD", got.Data["entity_id"])
			}
		})
	}
}

func TestPushSender_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := NewPushSender(srv.URL, "")
	out := s.Send(ctx, testDelivery("device-token"))
	assert.Equal(t, TransientFailure, out.Kind)
}

func TestBuildPushPayload_Priority(t *testing.T) {
	t.Parallel()

	d := testDelivery("tok")
	d.Priority = domain.PriorityLow
	p := buildPushPayload(d)
	require.Equal(t, "normal", p.Priority)
	assert.Equal(t, "71000", p.Data["value"])
	assert.Equal(t, "price_alert", p.Data["category"])
}
