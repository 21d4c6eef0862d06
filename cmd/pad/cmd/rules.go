package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/price-alert-dispatcher/internal/api/client"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

func rulesCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rules",
		Short: "Manage alert rules",
		Long: "Manage alert rules. A rule fires once each time an entity's metric crosses\n" +
			"its threshold from below; it re-arms when the value drops back under.",
	}

	root.AddCommand(
		ruleListCmd(),
		ruleGetCmd(),
		ruleCreateCmd(),
		ruleUpdateCmd(),
		ruleDeactivateCmd(),
		ruleDeleteCmd(),
	)

	return root
}

func ruleListCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alert rules",
		Example: `  pad rules list
  pad rules list --owner alice --active`,
		RunE: func(_ *cobra.Command, _ []string) error {
			owner, _ := ownerID()
			rules, err := newClient().ListRules(context.Background(), owner, activeOnly)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(rules)
			}
			if len(rules) == 0 {
				fmt.Println("No rules found.")
				return nil
			}
			return writeRuleTable(os.Stdout, rules)
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only active rules")

	return cmd
}

func ruleGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show rule details",
		Example: `  pad rules get 6f1c...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			r, err := newClient().GetRule(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(r)
			}
			return writeRuleDetail(os.Stdout, r)
		},
	}
}

func ruleCreateCmd() *cobra.Command {
	var (
		entity    string
		metric    string
		operator  string
		threshold float64
		inactive  bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an alert rule",
		Example: `  # Alert when AAPL trades at or above 200
  pad rules create --owner alice --entity AAPL --op gte --threshold 200

  # Alert on a 5% move within the lookback window
  pad rules create --owner alice --entity MSFT --op pct_change --threshold 5`,
		RunE: func(_ *cobra.Command, _ []string) error {
			owner, err := ownerID()
			if err != nil {
				return err
			}
			if entity == "" || operator == "" {
				return fmt.Errorf("--entity and --op are required")
			}

			req := apiclient.RuleRequest{
				OwnerID:   owner,
				EntityID:  entity,
				Metric:    domain.Metric(metric),
				Operator:  domain.Operator(operator),
				Threshold: threshold,
			}
			if inactive {
				active := false
				req.Active = &active
			}

			r, err := newClient().CreateRule(context.Background(), req)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(r)
			}
			fmt.Printf("Rule created: %s %s %s (%s)\n", r.EntityID, r.Metric, formatCondition(r.Condition), r.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "", "ticker or asset symbol")
	cmd.Flags().StringVar(&metric, "metric", "", "metric to watch (price, volume)")
	cmd.Flags().StringVar(&operator, "op", "", "operator (gte, lte, eq, pct_change)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "threshold value, or percent for pct_change")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the rule deactivated")

	return cmd
}

func ruleUpdateCmd() *cobra.Command {
	var (
		operator  string
		threshold float64
		active    bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a rule's condition or active flag",
		Long: "Change a rule's condition or active flag. Changing the condition re-arms\n" +
			"the rule, so the next observation is evaluated from a clean state.",
		Example: `  pad rules update 6f1c... --threshold 210
  pad rules update 6f1c... --active=true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd apiclient.RuleUpdate
			if cmd.Flags().Changed("op") {
				upd.Operator = domain.Operator(operator)
			}
			if cmd.Flags().Changed("threshold") {
				upd.Threshold = &threshold
			}
			if cmd.Flags().Changed("active") {
				upd.Active = &active
			}
			if upd.Operator == "" && upd.Threshold == nil && upd.Active == nil {
				return fmt.Errorf("nothing to update: set --op, --threshold, or --active")
			}

			r, err := newClient().UpdateRule(context.Background(), args[0], upd)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(r)
			}
			return writeRuleDetail(os.Stdout, r)
		},
	}
	cmd.Flags().StringVar(&operator, "op", "", "operator (gte, lte, eq, pct_change)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "threshold value")
	cmd.Flags().BoolVar(&active, "active", true, "whether the rule is evaluated")

	return cmd
}

func ruleDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "deactivate <id>",
		Short:   "Stop evaluating a rule",
		Example: `  pad rules deactivate 6f1c...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if _, err := newClient().DeactivateRule(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Rule %s deactivated.\n", args[0])
			return nil
		},
	}
}

func ruleDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a rule",
		Example: `  pad rules delete 6f1c...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := newClient().DeleteRule(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Rule %s deleted.\n", args[0])
			return nil
		},
	}
}
