package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

const evalDuration = "pad_evaluation_duration_seconds"

// ObservationsRate returns a timeseries panel showing accepted observations
// per second by ingestion source.
func ObservationsRate() *timeseries.PanelBuilder {
	return lineChart("Observations / s", "Observations accepted for evaluation, by source", ThirdWidth).
		WithTarget(PromQuery(`pad:observations:rate5m`, "{{source}}", "A")).
		Unit("ops").
		Legend(TableLegend("mean", "max"))
}

// DroppedObservations returns a timeseries panel showing observations that
// never reached a rule.
func DroppedObservations() *timeseries.PanelBuilder {
	return lineChart("Dropped Observations / min", "Observations rejected or discarded before evaluation", ThirdWidth).
		WithTarget(PromQuery(PerMinute("pad_observations_dropped_total", "reason"), "{{reason}}", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 10))
}

// CrossingsRate returns a timeseries panel showing threshold crossings per
// minute by direction.
func CrossingsRate() *timeseries.PanelBuilder {
	return lineChart("Crossings / min", "Rule threshold crossings, by direction", ThirdWidth).
		WithTarget(PromQuery(`pad:crossings:rate5m * 60`, "{{direction}}", "A"))
}

// EvaluationLatency returns a timeseries panel showing p50 and p95 time to
// evaluate one observation.
func EvaluationLatency() *timeseries.PanelBuilder {
	return lineChart("Evaluation Latency", "Time to evaluate one observation against its entity's rules", TSWidth).
		WithTarget(PromQuery(Quantile(0.50, evalDuration), "p50", "A")).
		WithTarget(PromQuery(Quantile(0.95, evalDuration), "p95", "B")).
		Unit("s").
		Legend(TableLegend("mean", "max"))
}

// StateConflicts returns a stat panel counting rule state writes that lost
// a compare-and-swap in the last hour.
func StateConflicts() *stat.PanelBuilder {
	return counterStat(
		"Rule State Conflicts (1h)",
		"Rule state updates retried after a concurrent write",
		`increase(`+Sel("pad_rule_state_conflicts_total")+`[1h])`,
		10, 100,
	)
}
