package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// OwnersHandler handles per-owner channel preferences and suppression logs.
type OwnersHandler struct {
	store store.Store
}

// NewOwnersHandler creates a new OwnersHandler.
func NewOwnersHandler(s store.Store) *OwnersHandler {
	return &OwnersHandler{store: s}
}

// --- Input/Output types ---

// OwnerIDInput addresses an owner.
type OwnerIDInput struct {
	ID string `path:"id" doc:"Owner ID"`
}

// ChannelsOutput is an owner's channel preferences.
type ChannelsOutput struct {
	Body domain.ChannelPreferences
}

// SetChannelsInput replaces an owner's channel contacts.
type SetChannelsInput struct {
	ID   string `path:"id" doc:"Owner ID"`
	Body struct {
		Contacts []domain.ChannelContact `json:"contacts"`
	}
}

// ListSuppressionsInput pages an owner's suppression log.
type ListSuppressionsInput struct {
	ID    string `path:"id"     doc:"Owner ID"`
	Limit int    `query:"limit" doc:"Number of results (default 50)" minimum:"0" maximum:"500"`
}

// ListSuppressionsOutput is an owner's recent suppressed triggers.
type ListSuppressionsOutput struct {
	Body struct {
		Suppressions []domain.SuppressedTrigger `json:"suppressions"`
	}
}

// --- Handlers ---

// GetChannels returns an owner's contacts. An owner with no saved
// preferences has no contacts.
func (h *OwnersHandler) GetChannels(ctx context.Context, input *OwnerIDInput) (*ChannelsOutput, error) {
	prefs, err := h.store.GetChannelPreferences(ctx, input.ID)
	if errors.Is(err, store.ErrNotFound) {
		prefs = &domain.ChannelPreferences{OwnerID: input.ID}
	} else if err != nil {
		return nil, huma.Error500InternalServerError("getting channel preferences: " + err.Error())
	}
	if prefs.Contacts == nil {
		prefs.Contacts = []domain.ChannelContact{}
	}
	return &ChannelsOutput{Body: *prefs}, nil
}

// SetChannels replaces an owner's contacts.
func (h *OwnersHandler) SetChannels(ctx context.Context, input *SetChannelsInput) (*ChannelsOutput, error) {
	if err := validateContacts(input.Body.Contacts); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	prefs := &domain.ChannelPreferences{OwnerID: input.ID, Contacts: input.Body.Contacts}
	if prefs.Contacts == nil {
		prefs.Contacts = []domain.ChannelContact{}
	}
	if err := h.store.SetChannelPreferences(ctx, prefs); err != nil {
		return nil, huma.Error500InternalServerError("saving channel preferences: " + err.Error())
	}
	return &ChannelsOutput{Body: *prefs}, nil
}

// ListSuppressions returns triggers the dedup guard dropped for an owner.
func (h *OwnersHandler) ListSuppressions(
	ctx context.Context,
	input *ListSuppressionsInput,
) (*ListSuppressionsOutput, error) {
	list, err := h.store.ListSuppressions(ctx, input.ID, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing suppressions: " + err.Error())
	}
	if list == nil {
		list = []domain.SuppressedTrigger{}
	}

	resp := &ListSuppressionsOutput{}
	resp.Body.Suppressions = list
	return resp, nil
}

func validateContacts(contacts []domain.ChannelContact) error {
	seen := make(map[domain.Channel]bool, len(contacts))
	var errs []error
	for i, c := range contacts {
		if !c.Channel.Valid() {
			errs = append(errs, fmt.Errorf("contacts[%d]: unknown channel %q", i, c.Channel))
			continue
		}
		if seen[c.Channel] {
			errs = append(errs, fmt.Errorf("contacts[%d]: duplicate channel %s", i, c.Channel))
		}
		seen[c.Channel] = true
		if c.Enabled && c.Address == "" {
			errs = append(errs, fmt.Errorf("contacts[%d]: enabled %s contact needs an address", i, c.Channel))
		}
	}
	return errors.Join(errs...)
}

// RegisterOwnerRoutes registers owner endpoints with the Huma API.
func RegisterOwnerRoutes(api huma.API, h *OwnersHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-owner-channels",
		Method:      http.MethodGet,
		Path:        "/api/v1/owners/{id}/channels",
		Summary:     "Get channel preferences",
		Tags:        []string{"owners"},
	}, h.GetChannels)

	huma.Register(api, huma.Operation{
		OperationID: "set-owner-channels",
		Method:      http.MethodPut,
		Path:        "/api/v1/owners/{id}/channels",
		Summary:     "Replace channel preferences",
		Description: "Sets the addresses an owner can be reached on. Each channel appears at most once.",
		Tags:        []string{"owners"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.SetChannels)

	huma.Register(api, huma.Operation{
		OperationID: "list-owner-suppressions",
		Method:      http.MethodGet,
		Path:        "/api/v1/owners/{id}/suppressions",
		Summary:     "List suppressed triggers",
		Tags:        []string{"owners"},
	}, h.ListSuppressions)
}
