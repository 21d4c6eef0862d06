package panels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `pad_readyz_up{job="price-alert-dispatcher"}`, Sel("pad_readyz_up"))
}

func TestPerMinute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		by   []string
		want string
	}{
		{
			name: "no grouping",
			want: `sum (rate(pad_x_total{job="price-alert-dispatcher"}[5m])) * 60`,
		},
		{
			name: "grouped",
			by:   []string{"channel", "outcome"},
			want: `sum by (channel, outcome) (rate(pad_x_total{job="price-alert-dispatcher"}[5m])) * 60`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PerMinute("pad_x_total", tt.by...))
		})
	}
}

func TestQuantile(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		`histogram_quantile(0.95, sum by (le, task) (rate(pad_job_seconds_bucket{job="price-alert-dispatcher"}[5m])))`,
		Quantile(0.95, "pad_job_seconds", "task"),
	)
}
