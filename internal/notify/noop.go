package notify

import (
	"context"
	"log/slog"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// NoOpSender logs and accepts every delivery. It stands in for an enabled
// channel whose provider is not configured.
type NoOpSender struct {
	channel domain.Channel
	log     *slog.Logger
}

// NewNoOpSender creates a sender for ch that discards deliveries.
func NewNoOpSender(ch domain.Channel, log *slog.Logger) *NoOpSender {
	return &NoOpSender{channel: ch, log: log}
}

// Channel implements Sender.
func (n *NoOpSender) Channel() domain.Channel { return n.channel }

// Send logs and discards d.
func (n *NoOpSender) Send(_ context.Context, d *Delivery) Outcome {
	n.log.Debug("delivery discarded (no provider configured)",
		"channel", n.channel,
		"attempt_id", d.AttemptID,
		"notification_id", d.NotificationID,
		"title", d.Title,
	)
	return Success()
}
