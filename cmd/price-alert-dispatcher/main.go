// Package main is the entry point for the price-alert-dispatcher.
package main

import (
	"os"

	"github.com/donaldgifford/price-alert-dispatcher/cmd/price-alert-dispatcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
