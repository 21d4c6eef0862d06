package main

import "errors"

// KnownMetrics is the set of metric names exported by price-alert-dispatcher
// plus recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"pad_http_request_duration_seconds": true,
	"pad_http_requests_total":           true,

	// Health metrics.
	"pad_healthz_up":    true,
	"pad_readyz_up":     true,
	"pad_dispatcher_up": true,

	// Evaluation metrics.
	"pad_observations_total":             true,
	"pad_observations_dropped_total":     true,
	"pad_rule_crossings_total":           true,
	"pad_rule_state_conflicts_total":     true,
	"pad_evaluation_duration_seconds":    true,
	"pad_notifications_created_total":    true,
	"pad_notifications_no_channel_total": true,
	"pad_suppressed_triggers_total":      true,

	// Delivery metrics.
	"pad_queue_published_total":           true,
	"pad_queue_publish_errors_total":      true,
	"pad_delivery_attempts_total":         true,
	"pad_delivery_duration_seconds":       true,
	"pad_duplicate_deliveries_total":      true,
	"pad_late_results_total":              true,
	"pad_redelivered_total":               true,
	"pad_notification_final_status_total": true,
	"pad_sms_rate_limit_wait_seconds":     true,
	"pad_email_provider_fallbacks_total":  true,

	// Scheduler metrics.
	"pad_scheduler_job_duration_seconds": true,
	"pad_scheduler_job_errors_total":     true,

	// Recording rules.
	"pad:http_requests:rate5m":     true,
	"pad:http_errors:rate5m":       true,
	"pad:observations:rate5m":      true,
	"pad:crossings:rate5m":         true,
	"pad:delivery_attempts:rate5m": true,
	"pad:delivery_failures:rate5m": true,
	"pad:delivery_duration:p95_5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
