package commands

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"analytics-exporter/internal/clock"
	"analytics-exporter/internal/config"
	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/ports"
	"analytics-exporter/internal/core/usecases"
	httpShell "analytics-exporter/internal/shell/http"
	"analytics-exporter/internal/shell/scheduler"
	"analytics-exporter/internal/shell/sink"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the export API, metrics server and scheduled exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	log.Printf("Starting Analytics Exporter with configuration:")
	log.Printf("  Server: %s:%d (private: %d)", cfg.Server.Host, cfg.Server.Port, cfg.Server.PrivatePort)
	log.Printf("  Database Type: %s", cfg.Database.Type)
	log.Printf("  Kafka: enabled=%t, brokers=%v", cfg.Kafka.Enabled, cfg.Kafka.Brokers)
	log.Printf("  Metrics: enabled=%t, port=%d", cfg.Metrics.Enabled, cfg.Metrics.Port)
	log.Printf("  Export: sink=%s, output_dir=%s, tick=%v, native_excel=%t", cfg.Export.Sink, cfg.Export.OutputDir, cfg.Export.TickInterval, cfg.Export.NativeExcel)
	log.Printf("  Schedule: %q", cfg.Schedule.Expression)

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

	clk := clock.New()
	generator := newGenerator(cfg)
	settings := controllerSettings(cfg)

	newSurface := func(owner string, target ports.DownloadSink) *usecases.Surface {
		controller := usecases.NewProgressController(owner, clk, generator, usecases.NewDispatcher(target), runRepo, settings, listeners...)
		return usecases.NewSurface(clk, controller)
	}

	var downloads httpShell.DownloadStore
	var factory usecases.SurfaceFactory
	switch cfg.Export.Sink {
	case "memory":
		sinks := sink.NewOwnerSinks()
		downloads = sinks
		factory = func(owner string) *usecases.Surface {
			return newSurface(owner, sinks.For(owner))
		}
	case "filesystem":
		factory = func(owner string) *usecases.Surface {
			fs, err := sink.NewFilesystemSink(ownerDir(cfg.Export.OutputDir, owner))
			if err != nil {
				// The surface still works; every dispatch reports the failure.
				log.Printf("Failed to prepare download directory for %s: %v", owner, err)
				return newSurface(owner, unavailableSink{err: err})
			}
			return newSurface(owner, fs)
		}
	default:
		return fmt.Errorf("unsupported export sink: %s", cfg.Export.Sink)
	}

	registry := usecases.NewRegistry(factory)
	runService := usecases.NewExportRunService(runRepo)

	var exportScheduler *scheduler.ExportScheduler
	var scheduledSurface *usecases.Surface
	if cfg.Schedule.Enabled() {
		exportScheduler, scheduledSurface, err = newExportScheduler(cfg, newSurface)
		if err != nil {
			return err
		}
	}

	router := httpShell.SetupRoutes(registry, runService, downloads)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	privateServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.PrivatePort),
		Handler: httpShell.SetupPrivateRoutes(registry),
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler: metricsMux,
		}

		go func() {
			log.Printf("Starting metrics server on %s%s", metricsServer.Addr, cfg.Metrics.Path)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if exportScheduler != nil {
		go func() {
			if err := exportScheduler.Start(ctx); err != nil {
				log.Printf("Export scheduler error: %v", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	go func() {
		log.Printf("Starting private server on %s", privateServer.Addr)
		if err := privateServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Private server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
	case runErr = <-serverErr:
		log.Printf("Server failed: %v", runErr)
	}

	log.Println("Shutting down server...")

	cancel()
	if exportScheduler != nil {
		exportScheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := privateServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Private server forced to shutdown: %v", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Metrics server forced to shutdown: %v", err)
		}
	}

	// In-flight jobs are discarded; their runs are recorded as cancelled.
	registry.CloseAll()
	if scheduledSurface != nil {
		scheduledSurface.Close()
	}

	log.Println("Server exited")
	return runErr
}

// newExportScheduler builds the scheduler and the dedicated surface it drives.
// Scheduled exports are written straight to the output directory.
func newExportScheduler(cfg *config.Config, newSurface func(string, ports.DownloadSink) *usecases.Surface) (*scheduler.ExportScheduler, *usecases.Surface, error) {
	format, err := domain.ParseFormat(cfg.Schedule.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid EXPORT_SCHEDULE_FORMAT: %w", err)
	}

	metrics, err := domain.ParseMetricList(strings.Join(cfg.Schedule.Metrics, ","))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid EXPORT_SCHEDULE_METRICS: %w", err)
	}

	fs, err := sink.NewFilesystemSink(cfg.Export.OutputDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare scheduled export directory: %w", err)
	}

	surface := newSurface(domain.SchedulerOwner, fs)
	s, err := scheduler.NewExportScheduler(surface, cfg.Schedule.Expression, format, metrics)
	if err != nil {
		return nil, nil, err
	}
	return s, surface, nil
}
