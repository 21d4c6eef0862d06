package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// price-alert-dispatcher operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "pad-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "pad-alerts",
					Rules: []Rule{
						{
							Alert: "PadDown",
							Expr:  `absent(up{job="price-alert-dispatcher"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Price Alert Dispatcher is down",
								"description": "The price-alert-dispatcher job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "PadReadinessDown",
							Expr:  `pad_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Price Alert Dispatcher readiness check is failing",
								"description": "The readiness probe has been reporting not-ready for more than 2 minutes.",
							},
						},
						{
							Alert: "PadDispatcherStopped",
							Expr:  `pad_dispatcher_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Delivery workers are not running",
								"description": "No delivery worker has consumed from the queue for more than 2 minutes. Notifications are accumulating undelivered.",
							},
						},
						{
							Alert: "PadHighErrorRate",
							Expr:  `pad:http_errors:rate5m / pad:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on Price Alert Dispatcher",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "PadDeliveryFailureRate",
							Expr:  `pad:delivery_failures:rate5m / pad:delivery_attempts:rate5m > 0.2`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Delivery failure rate is elevated",
								"description": "More than 20% of channel delivery attempts have failed over the last 10 minutes.",
							},
						},
						{
							Alert: "PadQueuePublishErrors",
							Expr:  `increase(pad_queue_publish_errors_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Delivery queue publish failures",
								"description": "Delivery attempts could not be enqueued. They stay pending until stale recovery republishes them.",
							},
						},
						{
							Alert: "PadSchedulerJobErrors",
							Expr:  `increase(pad_scheduler_job_errors_total[15m]) > 0`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Scheduled job failures",
								"description": "A scheduled maintenance job has been failing for more than 5 minutes.",
							},
						},
						{
							Alert: "PadNoEnabledChannel",
							Expr:  `increase(pad_notifications_no_channel_total[1h]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "info",
							},
							Annotations: map[string]string{
								"summary":     "Notifications failed for lack of an enabled channel",
								"description": "At least one owner has rules firing but no enabled delivery channel.",
							},
						},
					},
				},
			},
		},
	}
}
