package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

func observeCmd() *cobra.Command {
	var metric string

	cmd := &cobra.Command{
		Use:   "observe <entity=value>...",
		Short: "Push observations for evaluation",
		Long: "Push one or more observations to the evaluation engine. Each argument is\n" +
			"entity=value; all share --metric and are stamped with the server's receipt time.",
		Example: `  pad observe AAPL=201.5 MSFT=415
  pad observe TSLA=1200000 --metric volume`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			obs, err := parseObservations(args, domain.Metric(metric))
			if err != nil {
				return err
			}
			n, err := newClient().SubmitObservations(context.Background(), obs)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(map[string]int{"accepted": n})
			}
			fmt.Printf("%d observation(s) accepted.\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&metric, "metric", string(domain.MetricPrice), "metric (price, volume)")

	return cmd
}

func parseObservations(args []string, metric domain.Metric) ([]domain.Observation, error) {
	obs := make([]domain.Observation, 0, len(args))
	for _, a := range args {
		entity, raw, ok := strings.Cut(a, "=")
		if !ok || entity == "" {
			return nil, fmt.Errorf("invalid observation %q: want entity=value", a)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value in %q: %w", a, err)
		}
		obs = append(obs, domain.Observation{EntityID: entity, Metric: metric, Value: v})
	}
	return obs, nil
}
