package commands

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"analytics-exporter/internal/clock"
	"analytics-exporter/internal/config"
	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/ports"
	"analytics-exporter/internal/core/usecases"
	"analytics-exporter/internal/shell/sink"
)

// cliOwner owns the run history of one-shot exports
var cliOwner = domain.OwnerKey("local", "cli")

type exportOptions struct {
	format   string
	metrics  []string
	from     string
	to       string
	outDir   string
	charts   bool
	summary  bool
	insights bool
}

func NewExportCommand() *cobra.Command {
	opts := exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run one export and save the file to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if opts.outDir == "" {
				opts.outDir = cfg.Export.OutputDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runExport(ctx, cfg, opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.format, "format", string(domain.FormatCSV), "Export format (csv, excel, pdf, png)")
	flags.StringSliceVar(&opts.metrics, "metrics", []string{"revenue", "users", "conversion", "products"}, "Metrics to include")
	flags.StringVar(&opts.from, "from", "2024-01-01", "Start date (YYYY-MM-DD); empty for none")
	flags.StringVar(&opts.to, "to", "", "End date (YYYY-MM-DD); defaults to today")
	flags.StringVar(&opts.outDir, "out", "", "Output directory (defaults to EXPORT_OUTPUT_DIR)")
	flags.BoolVar(&opts.charts, "charts", true, "Include charts")
	flags.BoolVar(&opts.summary, "summary", true, "Include summary")
	flags.BoolVar(&opts.insights, "insights", false, "Include insights")

	return cmd
}

// update converts the flags into a full configuration update; metrics not
// named are deselected
func (o exportOptions) update(now time.Time) (ports.ConfigurationUpdate, error) {
	format, err := domain.ParseFormat(o.format)
	if err != nil {
		return ports.ConfigurationUpdate{}, err
	}

	metrics := make(map[domain.MetricKey]bool, len(domain.MetricCatalog()))
	for _, key := range domain.MetricCatalog() {
		metrics[key] = false
	}
	for _, name := range o.metrics {
		key, err := domain.ParseMetricKey(name)
		if err != nil {
			return ports.ConfigurationUpdate{}, err
		}
		metrics[key] = true
	}

	from, err := parseDateFlag("from", o.from)
	if err != nil {
		return ports.ConfigurationUpdate{}, err
	}
	to, err := parseDateFlag("to", o.to)
	if err != nil {
		return ports.ConfigurationUpdate{}, err
	}
	if to == nil {
		today := domain.CivilDate(now)
		to = &today
	}

	return ports.ConfigurationUpdate{
		Format:          &format,
		Metrics:         metrics,
		SetDateRange:    true,
		From:            from,
		To:              to,
		IncludeCharts:   &o.charts,
		IncludeSummary:  &o.summary,
		IncludeInsights: &o.insights,
	}, nil
}

func parseDateFlag(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: --%s %q is not a YYYY-MM-DD date", domain.ErrInvalidDateRange, name, value)
	}
	return &t, nil
}

// finishWaiter hands the first finishing event to a waiting caller
type finishWaiter chan ports.ExportEvent

func (w finishWaiter) ExportChanged(event ports.ExportEvent) {
	if !event.Finished() {
		return
	}
	select {
	case w <- event:
	default:
	}
}

func runExport(ctx context.Context, cfg *config.Config, opts exportOptions, out io.Writer) error {
	clk := clock.New()

	update, err := opts.update(clk.Now())
	if err != nil {
		return err
	}

	if opts.outDir == "" {
		return fmt.Errorf("an output directory is required")
	}
	fs, err := sink.NewFilesystemSink(opts.outDir)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}

	runRepo, err := openRunRepository(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := runRepo.Close(); closeErr != nil {
			log.Printf("Error closing database: %v", closeErr)
		}
	}()

	listeners, closeListeners, err := newListeners(cfg)
	if err != nil {
		return err
	}
	defer closeListeners()

	done := make(finishWaiter, 1)
	listeners = append(listeners, done)

	controller := usecases.NewProgressController(cliOwner, clk, newGenerator(cfg), usecases.NewDispatcher(fs), runRepo, controllerSettings(cfg), listeners...)
	surface := usecases.NewSurface(clk, controller)
	defer surface.Close()

	if err := surface.Open(); err != nil {
		return err
	}
	if _, err := surface.Configure(update); err != nil {
		return err
	}
	if !surface.StartExport() {
		return domain.ErrNoMetricsSelected
	}

	log.Printf("Export started: job_id=%s, format=%s", surface.Job().ID, *update.Format)

	select {
	case event := <-done:
		if event.Failed() {
			return fmt.Errorf("export %s failed: %s", event.Job.ID, event.Job.LastError)
		}
		artifact := event.Job.Artifact
		fmt.Fprintf(out, "Saved %s (%s, %d bytes)\n", filepath.Join(fs.Dir(), artifact.Filename), artifact.Mime, artifact.Size)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("export cancelled: %w", ctx.Err())
	}
}
