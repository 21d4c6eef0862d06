// Package cmd implements the pad CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/price-alert-dispatcher/internal/api/client"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "pad",
		Short: "CLI client for the price alert dispatcher",
		Long: "pad is a command-line client for the price-alert-dispatcher API.\n" +
			"It lets you manage alert rules and channel contacts, inspect\n" +
			"notifications and their delivery attempts, and push observations.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default $HOME/.pad.yaml)")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")
	rootCmd.PersistentFlags().
		String("owner", "", "owner ID used when a command needs one")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))
	cobra.CheckErr(viper.BindPFlag("owner", rootCmd.PersistentFlags().Lookup("owner")))

	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(notificationsCmd())
	rootCmd.AddCommand(channelsCmd())
	rootCmd.AddCommand(suppressionsCmd())
	rootCmd.AddCommand(observeCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pad")
	}

	viper.SetEnvPrefix("PAD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}

// ownerID returns the --owner flag, or the PAD_OWNER / config value.
func ownerID() (string, error) {
	id := viper.GetString("owner")
	if id == "" {
		return "", fmt.Errorf("--owner is required")
	}
	return id, nil
}
