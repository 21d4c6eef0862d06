// Package domain defines the core business types for the price alert dispatcher.
package domain

import (
	"slices"
	"time"
)

// Operator is the comparison applied by an alert rule.
type Operator string

// Operator constants.
const (
	OperatorGTE       Operator = "gte"
	OperatorLTE       Operator = "lte"
	OperatorEQ        Operator = "eq"
	OperatorPctChange Operator = "pct_change"
)

// Valid reports whether o is a known operator.
func (o Operator) Valid() bool {
	switch o {
	case OperatorGTE, OperatorLTE, OperatorEQ, OperatorPctChange:
		return true
	}
	return false
}

// Side is the last known position of an observed value relative to a rule's
// condition. SideAbove means the condition holds.
type Side string

// Side constants.
const (
	SideUnset Side = ""
	SideAbove Side = "above"
	SideBelow Side = "below"
)

// Metric names the observed quantity.
type Metric string

// Metric constants.
const (
	MetricPrice  Metric = "price"
	MetricVolume Metric = "volume"
)

// Channel is a delivery medium.
type Channel string

// Channel constants.
const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelSMS   Channel = "sms"
)

// AllChannels lists every supported channel in a stable order.
var AllChannels = []Channel{ChannelEmail, ChannelPush, ChannelSMS}

// Valid reports whether c is a supported channel.
func (c Channel) Valid() bool {
	return slices.Contains(AllChannels, c)
}

// Category groups notifications for templating and deduplication.
type Category string

// Category constants.
const (
	CategoryPriceAlert Category = "price_alert"
	CategorySystem     Category = "system"
	CategoryTask       Category = "task"
	CategoryError      Category = "error"
	CategoryInfo       Category = "info"
	CategoryWarning    Category = "warning"
)

// Priority is the urgency hint passed to channels that support it.
type Priority string

// Priority constants.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// NotificationStatus is the aggregate delivery state of a notification.
type NotificationStatus string

// Notification status constants.
const (
	NotificationCreated            NotificationStatus = "created"
	NotificationQueued             NotificationStatus = "queued"
	NotificationDelivering         NotificationStatus = "delivering"
	NotificationDelivered          NotificationStatus = "delivered"
	NotificationPartiallyDelivered NotificationStatus = "partially_delivered"
	NotificationFailed             NotificationStatus = "failed"
	NotificationRead               NotificationStatus = "read"
)

// AttemptStatus is the state of a single per-channel delivery attempt.
type AttemptStatus string

// Attempt status constants.
const (
	AttemptPending   AttemptStatus = "pending"
	AttemptInFlight  AttemptStatus = "in_flight"
	AttemptSucceeded AttemptStatus = "succeeded"
	AttemptFailed    AttemptStatus = "failed"
	AttemptAbandoned AttemptStatus = "abandoned"
)

// Terminal reports whether no further transitions are possible.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptSucceeded || s == AttemptAbandoned
}

// Condition is the comparison an alert rule evaluates.
type Condition struct {
	Operator  Operator `json:"operator"  db:"operator"`
	Threshold float64  `json:"threshold" db:"threshold"`
}

// AlertRule is a user-defined condition on one entity's metric.
type AlertRule struct {
	ID        string    `json:"id"         db:"id"`
	OwnerID   string    `json:"owner_id"   db:"owner_id"`
	EntityID  string    `json:"entity_id"  db:"entity_id"`
	Metric    Metric    `json:"metric"     db:"metric"`
	Condition Condition `json:"condition"`
	Category  Category  `json:"category"   db:"category"`
	Active    bool      `json:"active"     db:"active"`
	LastState Side      `json:"last_state" db:"last_state"`
	Version   int64     `json:"version"    db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Observation is a single price or volume sample for an entity.
type Observation struct {
	EntityID  string    `json:"entity_id"`
	Metric    Metric    `json:"metric"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Notification is the user-facing message produced by a trigger or a system
// event, fanned out across one attempt per channel.
type Notification struct {
	ID            string             `json:"id"                       db:"id"`
	OwnerID       string             `json:"owner_id"                 db:"owner_id"`
	RuleID        *string            `json:"rule_id,omitempty"        db:"rule_id"`
	Title         string             `json:"title"                    db:"title"`
	Body          string             `json:"body"                     db:"body"`
	Category      Category           `json:"category"                 db:"category"`
	Priority      Priority           `json:"priority"                 db:"priority"`
	Data          map[string]any     `json:"data,omitempty"           db:"data"`
	Channels      []Channel          `json:"channels"                 db:"channels"`
	Status        NotificationStatus `json:"status"                   db:"status"`
	FailureReason string             `json:"failure_reason,omitempty" db:"failure_reason"`
	Version       int64              `json:"version"                  db:"version"`
	CreatedAt     time.Time          `json:"created_at"               db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"               db:"updated_at"`
	ReadAt        *time.Time         `json:"read_at,omitempty"        db:"read_at"`
}

// DeliveryAttempt tracks delivery of one notification over one channel.
// AttemptNumber counts the sends performed so far.
type DeliveryAttempt struct {
	ID             string        `json:"id"                      db:"id"`
	NotificationID string        `json:"notification_id"         db:"notification_id"`
	Channel        Channel       `json:"channel"                 db:"channel"`
	Recipient      string        `json:"recipient"               db:"recipient"`
	AttemptNumber  int           `json:"attempt_number"          db:"attempt_number"`
	Status         AttemptStatus `json:"status"                  db:"status"`
	LastError      string        `json:"last_error,omitempty"    db:"last_error"`
	NextRetryAt    *time.Time    `json:"next_retry_at,omitempty" db:"next_retry_at"`
	Version        int64         `json:"version"                 db:"version"`
	CreatedAt      time.Time     `json:"created_at"              db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"              db:"updated_at"`
}

// ChannelContact is an owner's address on one channel.
type ChannelContact struct {
	Channel Channel `json:"channel" db:"channel"`
	Address string  `json:"address" db:"address"`
	Enabled bool    `json:"enabled" db:"enabled"`
}

// ChannelPreferences holds the channels an owner wants to be reached on.
type ChannelPreferences struct {
	OwnerID  string           `json:"owner_id"`
	Contacts []ChannelContact `json:"contacts"`
}

// Enabled returns the enabled channels that carry an address.
func (p ChannelPreferences) Enabled() []Channel {
	var out []Channel
	for _, c := range p.Contacts {
		if c.Enabled && c.Address != "" {
			out = append(out, c.Channel)
		}
	}
	return out
}

// Address returns the owner's address for ch.
func (p ChannelPreferences) Address(ch Channel) (string, bool) {
	for _, c := range p.Contacts {
		if c.Channel == ch && c.Enabled && c.Address != "" {
			return c.Address, true
		}
	}
	return "", false
}

// SuppressedTrigger records a notification that the dedup guard dropped on
// one channel.
type SuppressedTrigger struct {
	ID        string    `json:"id"                db:"id"`
	OwnerID   string    `json:"owner_id"          db:"owner_id"`
	RuleID    *string   `json:"rule_id,omitempty" db:"rule_id"`
	Category  Category  `json:"category"          db:"category"`
	Channel   Channel   `json:"channel"           db:"channel"`
	Reason    string    `json:"reason"            db:"reason"`
	CreatedAt time.Time `json:"created_at"        db:"created_at"`
}

// NotificationFilter narrows ListForOwner results.
type NotificationFilter struct {
	Status     NotificationStatus
	Category   Category
	UnreadOnly bool
	Limit      int
	Offset     int
}

// SystemPayload is the input for a notification that is not tied to a rule.
type SystemPayload struct {
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Category Category       `json:"category"`
	Priority Priority       `json:"priority,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Channels []Channel      `json:"channels,omitempty"`
}
