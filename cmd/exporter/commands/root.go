package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "exporter",
		Short:         "Analytics dashboard report exporter",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		NewServeCommand(),
		NewExportCommand(),
		NewFormatsCommand(),
	)

	return rootCmd
}
