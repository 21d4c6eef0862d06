package panels

import "github.com/grafana/grafana-foundation-sdk/go/timeseries"

const httpDuration = "pad_http_request_duration_seconds"

// RequestRate returns a timeseries panel showing the API request rate.
func RequestRate() *timeseries.PanelBuilder {
	return lineChart("Request Rate", "API requests per second, probes and scrapes excluded", TSWidth).
		WithTarget(PromQuery(`pad:http_requests:rate5m`, "req/s", "A")).
		Unit("reqps").
		Legend(TableLegend("mean", "max"))
}

// LatencyPercentiles returns a timeseries panel showing p50, p95, and p99
// API latency.
func LatencyPercentiles() *timeseries.PanelBuilder {
	return lineChart("Latency Percentiles", "API request duration percentiles", TSWidth).
		WithTarget(PromQuery(Quantile(0.50, httpDuration), "p50", "A")).
		WithTarget(PromQuery(Quantile(0.95, httpDuration), "p95", "B")).
		WithTarget(PromQuery(Quantile(0.99, httpDuration), "p99", "C")).
		Unit("s").
		Legend(TableLegend("mean", "max"))
}

// ErrorRate returns a timeseries panel showing 5xx responses as a
// percentage of all API requests.
func ErrorRate() *timeseries.PanelBuilder {
	return lineChart("Error Rate %", "API 5xx responses as percentage of requests", TSWidth).
		WithTarget(PromQuery(`pad:http_errors:rate5m / pad:http_requests:rate5m * 100`, "error %", "A")).
		Unit("percent").
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds())
}
