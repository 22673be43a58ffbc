package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/usecases"
)

func NewFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported export formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printFormats(cmd.OutOrStdout(), time.Now())
		},
	}
}

func printFormats(out io.Writer, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FORMAT\tLABEL\tMIME\tFILENAME")
	for _, f := range domain.Formats() {
		spec := f.Spec()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f, f.Label(), spec.Mime, usecases.BuildFilename(spec.BaseName, now, spec.Extension))
	}
	return w.Flush()
}
