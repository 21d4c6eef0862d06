// Package main is the entry point for the pad CLI client.
package main

import (
	"github.com/donaldgifford/price-alert-dispatcher/cmd/pad/cmd"
)

func main() {
	cmd.Execute()
}
