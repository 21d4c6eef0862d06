package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/price-alert-dispatcher/internal/factory"
	"github.com/donaldgifford/price-alert-dispatcher/internal/tracker"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// NotificationTracker is the status tracker surface the API needs.
type NotificationTracker interface {
	Get(ctx context.Context, id string) (*tracker.View, error)
	ListForOwner(ctx context.Context, ownerID string, f domain.NotificationFilter) (*tracker.Page, error)
	MarkRead(ctx context.Context, id string) (*domain.Notification, error)
	Delete(ctx context.Context, id string) error
}

// SystemNotifier creates notifications that are not tied to a rule.
type SystemNotifier interface {
	CreateSystemNotification(ctx context.Context, ownerID string, p domain.SystemPayload) (*factory.Result, error)
}

// NotificationsHandler handles notification status endpoints.
type NotificationsHandler struct {
	tracker  NotificationTracker
	notifier SystemNotifier
}

// NewNotificationsHandler creates a new NotificationsHandler.
func NewNotificationsHandler(t NotificationTracker, n SystemNotifier) *NotificationsHandler {
	return &NotificationsHandler{tracker: t, notifier: n}
}

// --- Input/Output types ---

// ListNotificationsInput filters an owner's notifications.
type ListNotificationsInput struct {
	OwnerID    string `query:"owner_id"    doc:"Owner whose notifications to list" required:"true" minLength:"1"`
	Status     string `query:"status"      doc:"Filter by status"                  enum:"created,queued,delivering,delivered,partially_delivered,failed,read,"`
	Category   string `query:"category"    doc:"Filter by category"                enum:"price_alert,system,task,error,info,warning,"`
	UnreadOnly bool   `query:"unread_only" doc:"Only notifications without a read receipt"`
	Limit      int    `query:"limit"       doc:"Number of results (default 50)"    minimum:"0" maximum:"500"`
	Offset     int    `query:"offset"      doc:"Pagination offset"                 minimum:"0"`
}

// ListNotificationsOutput is the response for listing notifications.
type ListNotificationsOutput struct {
	Body struct {
		Notifications []domain.Notification `json:"notifications"`
		Total         int                   `json:"total"`
		Limit         int                   `json:"limit"`
		Offset        int                   `json:"offset"`
	}
}

// NotificationIDInput addresses a single notification.
type NotificationIDInput struct {
	ID string `path:"id" doc:"Notification UUID"`
}

// GetNotificationOutput is a notification with its delivery attempts.
type GetNotificationOutput struct {
	Body tracker.View
}

// NotificationOutput wraps a single notification.
type NotificationOutput struct {
	Body domain.Notification
}

// SystemNotificationBody is the request to send a system notification.
type SystemNotificationBody struct {
	OwnerID  string           `json:"owner_id"           minLength:"1"`
	Title    string           `json:"title"              minLength:"1"`
	Body     string           `json:"body,omitempty"`
	Category domain.Category  `json:"category,omitempty" enum:"system,task,error,info,warning"`
	Priority domain.Priority  `json:"priority,omitempty" enum:"low,medium,high"`
	Data     map[string]any   `json:"data,omitempty"`
	Channels []domain.Channel `json:"channels,omitempty" doc:"Restrict delivery to these channels"`
}

// CreateSystemNotificationInput is the input for sending a system notification.
type CreateSystemNotificationInput struct {
	Body SystemNotificationBody
}

// CreateSystemNotificationOutput reports what the factory produced.
type CreateSystemNotificationOutput struct {
	Status int
	Body   struct {
		Notification *domain.Notification    `json:"notification"`
		Attempts     []domain.DeliveryAttempt `json:"attempts"`
		Suppressed   []domain.Channel         `json:"suppressed"`
	}
}

// --- Handlers ---

// ListNotifications returns an owner's notifications, newest first.
func (h *NotificationsHandler) ListNotifications(
	ctx context.Context,
	input *ListNotificationsInput,
) (*ListNotificationsOutput, error) {
	page, err := h.tracker.ListForOwner(ctx, input.OwnerID, domain.NotificationFilter{
		Status:     domain.NotificationStatus(input.Status),
		Category:   domain.Category(input.Category),
		UnreadOnly: input.UnreadOnly,
		Limit:      input.Limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("listing notifications: " + err.Error())
	}

	resp := &ListNotificationsOutput{}
	resp.Body.Notifications = page.Notifications
	resp.Body.Total = page.Total
	resp.Body.Limit = page.Limit
	resp.Body.Offset = page.Offset
	return resp, nil
}

// GetNotification returns a notification and its per-channel attempts.
func (h *NotificationsHandler) GetNotification(
	ctx context.Context,
	input *NotificationIDInput,
) (*GetNotificationOutput, error) {
	view, err := h.tracker.Get(ctx, input.ID)
	if err != nil {
		return nil, storeError("notification", err)
	}
	if view.Attempts == nil {
		view.Attempts = []domain.DeliveryAttempt{}
	}
	return &GetNotificationOutput{Body: *view}, nil
}

// MarkRead records a read receipt.
func (h *NotificationsHandler) MarkRead(ctx context.Context, input *NotificationIDInput) (*NotificationOutput, error) {
	n, err := h.tracker.MarkRead(ctx, input.ID)
	if errors.Is(err, tracker.ErrNotYetDelivered) {
		return nil, huma.Error409Conflict(err.Error())
	}
	if err != nil {
		return nil, storeError("notification", err)
	}
	return &NotificationOutput{Body: *n}, nil
}

// DeleteNotification removes a notification and its attempts.
func (h *NotificationsHandler) DeleteNotification(ctx context.Context, input *NotificationIDInput) (*struct{}, error) {
	if err := h.tracker.Delete(ctx, input.ID); err != nil {
		return nil, storeError("notification", err)
	}
	return nil, nil
}

// CreateSystemNotification sends a notification that is not tied to a rule.
// A fully suppressed request answers 200 with a null notification.
func (h *NotificationsHandler) CreateSystemNotification(
	ctx context.Context,
	input *CreateSystemNotificationInput,
) (*CreateSystemNotificationOutput, error) {
	b := input.Body
	res, err := h.notifier.CreateSystemNotification(ctx, b.OwnerID, domain.SystemPayload{
		Title:    b.Title,
		Body:     b.Body,
		Category: b.Category,
		Priority: b.Priority,
		Data:     b.Data,
		Channels: b.Channels,
	})
	if errors.Is(err, factory.ErrInvalidPayload) {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("creating notification: " + err.Error())
	}

	resp := &CreateSystemNotificationOutput{Status: http.StatusCreated}
	if res.Notification == nil {
		resp.Status = http.StatusOK
	}
	resp.Body.Notification = res.Notification
	resp.Body.Attempts = res.Attempts
	resp.Body.Suppressed = res.Suppressed
	if resp.Body.Attempts == nil {
		resp.Body.Attempts = []domain.DeliveryAttempt{}
	}
	if resp.Body.Suppressed == nil {
		resp.Body.Suppressed = []domain.Channel{}
	}
	return resp, nil
}

// RegisterNotificationRoutes registers notification endpoints with the Huma API.
func RegisterNotificationRoutes(api huma.API, h *NotificationsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-notifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications",
		Summary:     "List notifications",
		Description: "Returns an owner's notifications filtered by status, category, and read state.",
		Tags:        []string{"notifications"},
	}, h.ListNotifications)

	huma.Register(api, huma.Operation{
		OperationID: "get-notification",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications/{id}",
		Summary:     "Get a notification",
		Description: "Returns a notification with its per-channel delivery attempts.",
		Tags:        []string{"notifications"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetNotification)

	huma.Register(api, huma.Operation{
		OperationID: "read-notification",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/{id}/read",
		Summary:     "Mark a notification read",
		Description: "Only delivered or partially delivered notifications can be read. Reading twice is a no-op.",
		Tags:        []string{"notifications"},
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, h.MarkRead)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-notification",
		Method:        http.MethodDelete,
		Path:          "/api/v1/notifications/{id}",
		Summary:       "Delete a notification",
		Tags:          []string{"notifications"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, h.DeleteNotification)

	huma.Register(api, huma.Operation{
		OperationID: "create-system-notification",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/system",
		Summary:     "Send a system notification",
		Tags:        []string{"notifications"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.CreateSystemNotification)
}
