package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// NotificationList is one page of an owner's notifications.
type NotificationList struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int                   `json:"total"`
	Limit         int                   `json:"limit"`
	Offset        int                   `json:"offset"`
}

// NotificationDetail is a notification with its delivery attempts.
type NotificationDetail struct {
	domain.Notification
	Attempts []domain.DeliveryAttempt `json:"attempts"`
}

// SystemNotificationResult is what the server created for a system
// notification. Notification is nil when every channel was suppressed.
type SystemNotificationResult struct {
	Notification *domain.Notification    `json:"notification"`
	Attempts     []domain.DeliveryAttempt `json:"attempts"`
	Suppressed   []domain.Channel         `json:"suppressed"`
}

type systemRequest struct {
	OwnerID  string           `json:"owner_id"`
	Title    string           `json:"title"`
	Body     string           `json:"body,omitempty"`
	Category domain.Category  `json:"category,omitempty"`
	Priority domain.Priority  `json:"priority,omitempty"`
	Data     map[string]any   `json:"data,omitempty"`
	Channels []domain.Channel `json:"channels,omitempty"`
}

// ListNotifications returns an owner's notifications.
func (c *Client) ListNotifications(
	ctx context.Context,
	ownerID string,
	f domain.NotificationFilter,
) (*NotificationList, error) {
	params := url.Values{}
	params.Set("owner_id", ownerID)
	if f.Status != "" {
		params.Set("status", string(f.Status))
	}
	if f.Category != "" {
		params.Set("category", string(f.Category))
	}
	if f.UnreadOnly {
		params.Set("unread_only", "true")
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		params.Set("offset", strconv.Itoa(f.Offset))
	}

	var resp NotificationList
	if err := c.get(ctx, "/api/v1/notifications?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetNotification returns a notification and its attempts.
func (c *Client) GetNotification(ctx context.Context, id string) (*NotificationDetail, error) {
	var resp NotificationDetail
	if err := c.get(ctx, "/api/v1/notifications/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkRead records a read receipt.
func (c *Client) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	var n domain.Notification
	if err := c.post(ctx, "/api/v1/notifications/"+url.PathEscape(id)+"/read", nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteNotification deletes a notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/notifications/"+url.PathEscape(id), nil)
}

// SendSystemNotification sends a notification that is not tied to a rule.
func (c *Client) SendSystemNotification(
	ctx context.Context,
	ownerID string,
	p domain.SystemPayload,
) (*SystemNotificationResult, error) {
	body := systemRequest{
		OwnerID:  ownerID,
		Title:    p.Title,
		Body:     p.Body,
		Category: p.Category,
		Priority: p.Priority,
		Data:     p.Data,
		Channels: p.Channels,
	}

	var resp SystemNotificationResult
	if err := c.post(ctx, "/api/v1/notifications/system", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
