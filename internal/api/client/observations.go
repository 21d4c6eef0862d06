package client

import (
	"context"
	"time"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

type observationItem struct {
	EntityID  string        `json:"entity_id"`
	Metric    domain.Metric `json:"metric,omitempty"`
	Value     float64       `json:"value"`
	Timestamp *time.Time    `json:"timestamp,omitempty"`
}

// SubmitObservations pushes observations for evaluation and returns how many
// the server accepted.
func (c *Client) SubmitObservations(ctx context.Context, obs []domain.Observation) (int, error) {
	items := make([]observationItem, 0, len(obs))
	for _, o := range obs {
		it := observationItem{EntityID: o.EntityID, Metric: o.Metric, Value: o.Value}
		if !o.Timestamp.IsZero() {
			ts := o.Timestamp.UTC()
			it.Timestamp = &ts
		}
		items = append(items, it)
	}

	var resp struct {
		Accepted int `json:"accepted"`
	}
	if err := c.post(ctx, "/api/v1/observations", map[string]any{"observations": items}, &resp); err != nil {
		return 0, err
	}
	return resp.Accepted, nil
}
