package main

import (
	"os"

	"analytics-exporter/cmd/exporter/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
