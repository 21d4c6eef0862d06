package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// GetChannels returns an owner's channel contacts.
func (c *Client) GetChannels(ctx context.Context, ownerID string) (*domain.ChannelPreferences, error) {
	var p domain.ChannelPreferences
	if err := c.get(ctx, "/api/v1/owners/"+url.PathEscape(ownerID)+"/channels", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetChannels replaces an owner's channel contacts.
func (c *Client) SetChannels(
	ctx context.Context,
	ownerID string,
	contacts []domain.ChannelContact,
) (*domain.ChannelPreferences, error) {
	body := map[string][]domain.ChannelContact{"contacts": contacts}

	var p domain.ChannelPreferences
	if err := c.put(ctx, "/api/v1/owners/"+url.PathEscape(ownerID)+"/channels", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListSuppressions returns an owner's recently suppressed triggers.
func (c *Client) ListSuppressions(ctx context.Context, ownerID string, limit int) ([]domain.SuppressedTrigger, error) {
	path := "/api/v1/owners/" + url.PathEscape(ownerID) + "/suppressions"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var resp struct {
		Suppressions []domain.SuppressedTrigger `json:"suppressions"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Suppressions, nil
}
