// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/price-alert-dispatcher/tools/dashgen/panels"
)

// BuildOverview constructs the PAD Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("PAD Overview").
		Uid("pad-overview").
		Tags([]string{"pad", "price-alert-dispatcher"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.DispatcherStat()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Evaluation.
	b.WithRow(dashboard.NewRowBuilder("Evaluation").
		WithPanel(panels.ObservationsRate()).
		WithPanel(panels.DroppedObservations()).
		WithPanel(panels.CrossingsRate()).
		WithPanel(panels.EvaluationLatency()).
		WithPanel(panels.StateConflicts()))

	// Row 4: Notifications.
	b.WithRow(dashboard.NewRowBuilder("Notifications").
		WithPanel(panels.NotificationsCreated()).
		WithPanel(panels.FinalStatus()).
		WithPanel(panels.SuppressedTriggers()).
		WithPanel(panels.NoChannelFailures()))

	// Row 5: Delivery.
	b.WithRow(dashboard.NewRowBuilder("Delivery").
		WithPanel(panels.AttemptsByOutcome()).
		WithPanel(panels.DeliveryFailureRate()).
		WithPanel(panels.DeliveryLatency()).
		WithPanel(panels.Redelivered()).
		WithPanel(panels.LateResults()).
		WithPanel(panels.ProviderFallbacks()).
		WithPanel(panels.SMSRateLimitWait()))

	// Row 6: Scheduler.
	b.WithRow(dashboard.NewRowBuilder("Scheduler").
		WithPanel(panels.JobDuration()).
		WithPanel(panels.JobErrors()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
