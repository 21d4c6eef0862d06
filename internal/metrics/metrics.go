// Package metrics defines Prometheus metrics for price-alert-dispatcher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pad"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Health probe metrics.
var (
	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 when the last /healthz probe succeeded.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 when the last /readyz probe succeeded.",
	})
)

// Evaluation metrics.
var (
	ObservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observations_total",
		Help:      "Observations received, by source.",
	}, []string{"source"})

	ObservationsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observations_dropped_total",
		Help:      "Observations dropped before evaluation, by reason.",
	}, []string{"reason"})

	CrossingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rule_crossings_total",
		Help:      "Rule side changes, by direction.",
	}, []string{"direction"})

	RuleStateConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rule_state_conflicts_total",
		Help:      "Optimistic rule state updates that lost a race and were retried.",
	})

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "evaluation_duration_seconds",
		Help:      "Time to evaluate all rules for one observation.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
)

// Notification metrics.
var (
	NotificationsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Notifications created, by category.",
	}, []string{"category"})

	NotificationsFailedConfigTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_no_channel_total",
		Help:      "Notifications created as failed because no channel was eligible.",
	})

	SuppressedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suppressed_triggers_total",
		Help:      "Per-channel notifications suppressed by the dedup guard.",
	}, []string{"channel"})

	NotificationStatusTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_final_status_total",
		Help:      "Notifications reaching a terminal aggregate status.",
	}, []string{"status"})
)

// Delivery metrics.
var (
	QueuePublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "queue_published_total",
		Help:      "Delivery messages published.",
	})

	QueuePublishErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "queue_publish_errors_total",
		Help:      "Delivery message publish failures.",
	})

	DeliveryAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_attempts_total",
		Help:      "Channel sends, by channel and outcome.",
	}, []string{"channel", "outcome"})

	DeliveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "delivery_duration_seconds",
		Help:      "Duration of channel sends in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"channel"})

	DuplicateDeliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicate_deliveries_total",
		Help:      "Queue messages absorbed by the idempotence guard.",
	})

	LateResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "late_results_total",
		Help:      "Sender results arriving after the send timeout, by disposition.",
	}, []string{"disposition"})

	RedeliveredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "redelivered_total",
		Help:      "Attempts republished by background jobs, by job.",
	}, []string{"task"})

	DispatcherUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dispatcher_up",
		Help:      "1 while the dispatcher is consuming.",
	})
)

// Scheduler metrics.
var (
	SchedulerJobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scheduler_job_duration_seconds",
		Help:      "Duration of scheduled job runs.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"task"})

	SchedulerJobErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduler_job_errors_total",
		Help:      "Scheduled job runs that returned an error.",
	}, []string{"task"})
)

// Channel provider metrics.
var (
	SMSRateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sms_rate_limit_wait_seconds",
		Help:      "Time spent waiting on the SMS gateway rate limiter.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})

	EmailProviderFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_provider_fallbacks_total",
		Help:      "Emails sent through a fallback provider, by provider.",
	}, []string{"provider"})
)
