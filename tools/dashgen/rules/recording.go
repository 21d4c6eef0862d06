package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "pad-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "pad-recording",
					Rules: []Rule{
						{
							Record: "pad:http_requests:rate5m",
							Expr:   `sum(rate(pad_http_requests_total[5m]))`,
						},
						{
							Record: "pad:http_errors:rate5m",
							Expr:   `sum(rate(pad_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "pad:observations:rate5m",
							Expr:   `sum by (source) (rate(pad_observations_total[5m]))`,
						},
						{
							Record: "pad:crossings:rate5m",
							Expr:   `sum by (direction) (rate(pad_rule_crossings_total[5m]))`,
						},
						{
							Record: "pad:delivery_attempts:rate5m",
							Expr:   `sum(rate(pad_delivery_attempts_total[5m]))`,
						},
						{
							Record: "pad:delivery_failures:rate5m",
							Expr:   `sum(rate(pad_delivery_attempts_total{outcome=~"transient|permanent"}[5m]))`,
						},
						{
							Record: "pad:delivery_duration:p95_5m",
							Expr:   `histogram_quantile(0.95, sum by (channel, le) (rate(pad_delivery_duration_seconds_bucket[5m])))`,
						},
					},
				},
			},
		},
	}
}
