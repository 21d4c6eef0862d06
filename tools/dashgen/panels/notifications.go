package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// NotificationsCreated returns a timeseries panel showing notifications
// created per minute by category.
func NotificationsCreated() *timeseries.PanelBuilder {
	return lineChart("Notifications Created / min", "Notifications created, by category", TSWidth).
		WithTarget(PromQuery(PerMinute("pad_notifications_created_total", "category"), "{{category}}", "A")).
		Legend(TableLegend("mean", "max"))
}

// FinalStatus returns a timeseries panel showing notifications settling into
// a terminal status.
func FinalStatus() *timeseries.PanelBuilder {
	return lineChart("Final Status / min", "Notifications settled per minute, by overall status", TSWidth).
		WithTarget(PromQuery(PerMinute("pad_notification_final_status_total", "status"), "{{status}}", "A"))
}

// SuppressedTriggers returns a timeseries panel showing channel deliveries
// the dedup guard skipped.
func SuppressedTriggers() *timeseries.PanelBuilder {
	return lineChart("Suppressed Triggers / min", "Channel deliveries skipped inside the dedup window", TSWidth).
		WithTarget(PromQuery(PerMinute("pad_suppressed_triggers_total", "channel"), "{{channel}}", "A"))
}

// NoChannelFailures returns a stat panel counting notifications that failed
// because the owner had no enabled channel.
func NoChannelFailures() *stat.PanelBuilder {
	return counterStat(
		"No Enabled Channel (24h)",
		"Notifications failed at creation for lack of an enabled channel",
		`increase(`+Sel("pad_notifications_no_channel_total")+`[24h])`,
		1, 10,
	)
}
