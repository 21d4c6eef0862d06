package handlers_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/price-alert-dispatcher/internal/api/handlers"
	"github.com/donaldgifford/price-alert-dispatcher/internal/engine"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

type recordingSubmitter struct {
	mu  sync.Mutex
	got []domain.Observation
	err error
}

func (r *recordingSubmitter) Submit(_ context.Context, obs domain.Observation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, obs)
	return nil
}

func newObservationsAPI(t *testing.T, s handlers.ObservationSubmitter) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	handlers.RegisterObservationRoutes(api, handlers.NewObservationsHandler(s))
	return api
}

func TestObservationsHandler_Submit(t *testing.T) {
	t.Parallel()

	sub := &recordingSubmitter{}
	api := newObservationsAPI(t, sub)

	resp := api.Post("/api/v1/observations", map[string]any{
		"observations": []map[string]any{
			{"entity_id": "btc", "value": 71000, "timestamp": "2026-09-01T12:00:00Z"},
			{"entity_id": "AAPL", "metric": "volume", "value": 1200000},
		},
	})
	require.Equal(t, http.StatusAccepted, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"accepted":2`)

	require.Len(t, sub.got, 2)
	assert.Equal(t, "BTC", sub.got[0].EntityID)
	assert.Equal(t, domain.MetricPrice, sub.got[0].Metric)
	assert.Equal(t, domain.MetricVolume, sub.got[1].Metric)
	assert.False(t, sub.got[1].Timestamp.IsZero(), "receipt time fills a missing timestamp")
}

func TestObservationsHandler_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		body       map[string]any
		wantStatus int
	}{
		{
			name:       "engine stopped",
			err:        engine.ErrNotRunning,
			body:       map[string]any{"observations": []map[string]any{{"entity_id": "BTC", "value": 1}}},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "empty batch",
			body:       map[string]any{"observations": []map[string]any{}},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown metric",
			body:       map[string]any{"observations": []map[string]any{{"entity_id": "BTC", "metric": "spread", "value": 1}}},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "submitter failure",
			err:        assert.AnError,
			body:       map[string]any{"observations": []map[string]any{{"entity_id": "BTC", "value": 1}}},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sub := &recordingSubmitter{err: tt.err}
			resp := newObservationsAPI(t, sub).Post("/api/v1/observations", tt.body)
			assert.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			assert.Empty(t, sub.got)
		})
	}
}
