package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// RuleRequest contains the fields the API accepts when creating a rule.
type RuleRequest struct {
	OwnerID   string          `json:"owner_id"`
	EntityID  string          `json:"entity_id"`
	Metric    domain.Metric   `json:"metric,omitempty"`
	Operator  domain.Operator `json:"operator"`
	Threshold float64         `json:"threshold"`
	Active    *bool           `json:"active,omitempty"`
}

// RuleUpdate holds optional rule changes.
type RuleUpdate struct {
	Operator  domain.Operator `json:"operator,omitempty"`
	Threshold *float64        `json:"threshold,omitempty"`
	Active    *bool           `json:"active,omitempty"`
}

// ListRules returns rules, optionally for one owner.
func (c *Client) ListRules(ctx context.Context, ownerID string, activeOnly bool) ([]domain.AlertRule, error) {
	params := url.Values{}
	if ownerID != "" {
		params.Set("owner_id", ownerID)
	}
	if activeOnly {
		params.Set("active_only", strconv.FormatBool(true))
	}

	path := "/api/v1/rules"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp struct {
		Rules []domain.AlertRule `json:"rules"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

// GetRule returns a rule by ID.
func (c *Client) GetRule(ctx context.Context, id string) (*domain.AlertRule, error) {
	var r domain.AlertRule
	if err := c.get(ctx, "/api/v1/rules/"+url.PathEscape(id), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRule creates a rule.
func (c *Client) CreateRule(ctx context.Context, req RuleRequest) (*domain.AlertRule, error) {
	var r domain.AlertRule
	if err := c.post(ctx, "/api/v1/rules", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRule changes a rule's condition or active flag.
func (c *Client) UpdateRule(ctx context.Context, id string, upd RuleUpdate) (*domain.AlertRule, error) {
	var r domain.AlertRule
	if err := c.put(ctx, "/api/v1/rules/"+url.PathEscape(id), upd, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeactivateRule stops a rule from being evaluated.
func (c *Client) DeactivateRule(ctx context.Context, id string) (*domain.AlertRule, error) {
	var r domain.AlertRule
	if err := c.post(ctx, "/api/v1/rules/"+url.PathEscape(id)+"/deactivate", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRule deletes a rule.
func (c *Client) DeleteRule(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/rules/"+url.PathEscape(id), nil)
}
