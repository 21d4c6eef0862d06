package handlers_test

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/price-alert-dispatcher/internal/api/handlers"
	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	storeMocks "github.com/donaldgifford/price-alert-dispatcher/internal/store/mocks"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

func newOwnersAPI(t *testing.T, s store.Store) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	handlers.RegisterOwnerRoutes(api, handlers.NewOwnersHandler(s))
	return api
}

func TestOwnersHandler_Channels(t *testing.T) {
	t.Parallel()

	api := newOwnersAPI(t, store.NewMemoryStore())

	resp := api.Get("/api/v1/owners/owner-1/channels")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"contacts":[]`)

	resp = api.Put("/api/v1/owners/owner-1/channels", map[string]any{
		"contacts": []map[string]any{
			{"channel": "email", "address": "ana@example.com", "enabled": true},
			{"channel": "sms", "address": "+15550100", "enabled": false},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = api.Get("/api/v1/owners/owner-1/channels")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"ana@example.com"`)
	assert.Contains(t, resp.Body.String(), `"+15550100"`)
}

func TestOwnersHandler_SetChannelsValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contacts []map[string]any
		wantBody string
	}{
		{
			name:     "unknown channel",
			contacts: []map[string]any{{"channel": "pager", "address": "x", "enabled": true}},
			wantBody: "unknown channel",
		},
		{
			name: "duplicate channel",
			contacts: []map[string]any{
				{"channel": "email", "address": "a@example.com", "enabled": true},
				{"channel": "email", "address": "b@example.com", "enabled": true},
			},
			wantBody: "duplicate channel",
		},
		{
			name:     "enabled without address",
			contacts: []map[string]any{{"channel": "push", "address": "", "enabled": true}},
			wantBody: "needs an address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := newOwnersAPI(t, store.NewMemoryStore()).
				Put("/api/v1/owners/owner-1/channels", map[string]any{"contacts": tt.contacts})
			require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.wantBody)
		})
	}
}

func TestOwnersHandler_Suppressions(t *testing.T) {
	t.Parallel()

	ruleID := "r-1"
	ms := storeMocks.NewMockStore(t)
	ms.EXPECT().ListSuppressions(mock.Anything, "owner-1", 10).Return([]domain.SuppressedTrigger{
		{ID: "s-1", OwnerID: "owner-1", RuleID: &ruleID, Channel: domain.ChannelEmail, Reason: "dedup window"},
	}, nil).Once()
	ms.EXPECT().ListSuppressions(mock.Anything, "owner-2", 0).Return(nil, nil).Once()

	api := newOwnersAPI(t, ms)

	resp := api.Get("/api/v1/owners/owner-1/suppressions?limit=10")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"reason":"dedup window"`)

	resp = api.Get("/api/v1/owners/owner-2/suppressions")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"suppressions":[]`)
}
