package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// AttemptsByOutcome returns a timeseries panel showing delivery attempts per
// second by outcome.
func AttemptsByOutcome() *timeseries.PanelBuilder {
	return lineChart("Delivery Attempts", "Channel delivery attempts per second, by outcome", TSWidth).
		WithTarget(PromQuery(
			`sum by (outcome) (rate(`+Sel("pad_delivery_attempts_total")+`[5m]))`,
			"{{outcome}}", "A",
		)).
		Unit("ops").
		Legend(TableLegend("mean", "max"))
}

// DeliveryFailureRate returns a timeseries panel showing failed sends as a
// percentage of all attempts.
func DeliveryFailureRate() *timeseries.PanelBuilder {
	return lineChart("Delivery Failure %", "Transient and permanent failures as percentage of attempts", TSWidth).
		WithTarget(PromQuery(`pad:delivery_failures:rate5m / pad:delivery_attempts:rate5m * 100`, "failure %", "A")).
		Unit("percent").
		Thresholds(ThresholdsGreenYellowRed(5, 20)).
		ColorScheme(ColorSchemeThresholds())
}

// DeliveryLatency returns a timeseries panel showing p95 send time per
// channel.
func DeliveryLatency() *timeseries.PanelBuilder {
	return lineChart("Delivery Latency (p95)", "95th percentile provider send time, by channel", ThirdWidth).
		WithTarget(PromQuery(`pad:delivery_duration:p95_5m`, "{{channel}}", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenYellowRed(1, 5))
}

// Redelivered returns a timeseries panel showing attempts the scheduler put
// back on the queue.
func Redelivered() *timeseries.PanelBuilder {
	return lineChart("Redelivered / min", "Attempts republished by redelivery and stale recovery", ThirdWidth).
		WithTarget(PromQuery(PerMinute("pad_redelivered_total", "task"), "{{task}}", "A"))
}

// LateResults returns a timeseries panel showing provider results that
// arrived after their attempt timed out.
func LateResults() *timeseries.PanelBuilder {
	return lineChart("Late Results / min", "Results received after the attempt timeout, by disposition", ThirdWidth).
		WithTarget(PromQuery(PerMinute("pad_late_results_total", "disposition"), "{{disposition}}", "A"))
}

// ProviderFallbacks returns a stat panel counting email sends served by a
// fallback provider.
func ProviderFallbacks() *stat.PanelBuilder {
	return counterStat(
		"Email Fallbacks (24h)",
		"Email sends served by a fallback provider",
		`sum(increase(`+Sel("pad_email_provider_fallbacks_total")+`[24h]))`,
		1, 50,
	)
}

// SMSRateLimitWait returns a timeseries panel showing p95 time SMS sends
// waited on the provider rate limit.
func SMSRateLimitWait() *timeseries.PanelBuilder {
	return lineChart("SMS Rate Limit Wait (p95)", "Time SMS sends spent blocked on the provider rate limit", TSWidth).
		WithTarget(PromQuery(Quantile(0.95, "pad_sms_rate_limit_wait_seconds"), "p95", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenYellowRed(1, 5))
}
