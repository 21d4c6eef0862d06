// Package cmd implements the CLI commands for price-alert-dispatcher.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "price-alert-dispatcher",
	Short: "Evaluate price alerts and deliver notifications",
	Long: "A service that evaluates user alert rules against streaming market observations,\n" +
		"creates notifications when a rule's threshold is crossed, and delivers them over\n" +
		"email, push, and SMS with retries, deduplication, and read tracking.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
