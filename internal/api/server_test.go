package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/price-alert-dispatcher/internal/api"
	"github.com/donaldgifford/price-alert-dispatcher/internal/api/handlers"
	"github.com/donaldgifford/price-alert-dispatcher/internal/dedup"
	"github.com/donaldgifford/price-alert-dispatcher/internal/engine"
	"github.com/donaldgifford/price-alert-dispatcher/internal/factory"
	"github.com/donaldgifford/price-alert-dispatcher/internal/queue"
	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	"github.com/donaldgifford/price-alert-dispatcher/internal/tracker"
	"github.com/donaldgifford/price-alert-dispatcher/pkg/logger"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

type stack struct {
	store  *store.MemoryStore
	queue  *queue.MemoryQueue
	engine *engine.Engine
	srv    *httptest.Server
}

func newStack(t *testing.T, checks ...handlers.Check) *stack {
	t.Helper()

	s := store.NewMemoryStore()
	q := queue.NewMemoryQueue(64)
	f, err := factory.New(s, q, dedup.NewMemoryGuard(5*time.Minute, 1),
		[]domain.Channel{domain.ChannelEmail, domain.ChannelPush})
	require.NoError(t, err)

	eng := engine.NewEngine(s, f, engine.WithPartitions(2))
	eng.Start(context.Background())
	t.Cleanup(eng.Stop)

	e := api.NewServer(api.Deps{
		Store:     s,
		Tracker:   tracker.New(s),
		Notifier:  f,
		Submitter: eng,
		Checks:    checks,
		Logger:    logger.Discard(),
		Version:   "test",
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return &stack{store: s, queue: q, engine: eng, srv: srv}
}

func (st *stack) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, st.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServer_Probes(t *testing.T) {
	t.Parallel()

	failing := handlers.Check{Name: "dispatcher", Ready: func(context.Context) error {
		return errors.New("stopped")
	}}

	tests := []struct {
		name     string
		checks   []handlers.Check
		path     string
		wantCode int
	}{
		{name: "healthz", path: "/healthz", wantCode: http.StatusOK},
		{name: "readyz ok", path: "/readyz", wantCode: http.StatusOK},
		{name: "readyz failing", checks: []handlers.Check{failing}, path: "/readyz", wantCode: http.StatusServiceUnavailable},
		{name: "metrics", path: "/metrics", wantCode: http.StatusOK},
		{name: "openapi", path: "/openapi.json", wantCode: http.StatusOK},
		{name: "unknown route", path: "/nope", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st := newStack(t, tt.checks...)
			resp := st.do(t, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

func TestServer_ObservationTriggersNotification(t *testing.T) {
	t.Parallel()

	st := newStack(t)

	resp := st.do(t, http.MethodPut, "/api/v1/owners/owner-1/channels",
		`{"contacts":[{"channel":"email","address":"ana@example.com","enabled":true}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = st.do(t, http.MethodPost, "/api/v1/rules",
		`{"owner_id":"owner-1","entity_id":"BTC","operator":"gte","threshold":70000}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = st.do(t, http.MethodPost, "/api/v1/observations", `{"observations":[
		{"entity_id":"BTC","value":65000,"timestamp":"2026-09-01T12:00:00Z"},
		{"entity_id":"BTC","value":71000,"timestamp":"2026-09-01T12:01:00Z"}
	]}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		list, total, err := st.store.ListNotifications(context.Background(), "owner-1", domain.NotificationFilter{})
		return err == nil && total == 1 && list[0].Status == domain.NotificationQueued
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, st.queue.Len())
}
