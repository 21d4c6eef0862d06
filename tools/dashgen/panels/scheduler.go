package panels

import "github.com/grafana/grafana-foundation-sdk/go/timeseries"

// JobDuration returns a timeseries panel showing p95 run time per scheduled
// task.
func JobDuration() *timeseries.PanelBuilder {
	return lineChart("Job Duration (p95)", "95th percentile run time of scheduled tasks", TSWidth).
		WithTarget(PromQuery(Quantile(0.95, "pad_scheduler_job_duration_seconds", "task"), "{{task}}", "A")).
		Unit("s")
}

// JobErrors returns a timeseries panel showing failed scheduled runs.
func JobErrors() *timeseries.PanelBuilder {
	return lineChart("Job Errors / h", "Scheduled task runs that returned an error", TSWidth).
		WithTarget(PromQuery(
			`sum by (task) (increase(`+Sel("pad_scheduler_job_errors_total")+`[1h]))`,
			"{{task}}", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds())
}
