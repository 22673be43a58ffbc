package commands

import (
	"fmt"
	"log"
	"net/url"
	"path/filepath"

	"analytics-exporter/internal/config"
	"analytics-exporter/internal/core/artifacts"
	"analytics-exporter/internal/core/ports"
	"analytics-exporter/internal/core/usecases"
	"analytics-exporter/internal/shell/messaging"
	"analytics-exporter/internal/shell/notifier"
	"analytics-exporter/internal/shell/storage"
)

// runRepository is a run history store that holds a connection
type runRepository interface {
	usecases.ExportRunRepository
	Close() error
}

func openRunRepository(cfg *config.Config) (runRepository, error) {
	switch cfg.Database.Type {
	case "memory":
		log.Printf("Using in-memory export run history")
		return storage.NewMemoryExportRunRepository(), nil
	case "sqlite":
		repo, err := storage.NewSQLiteExportRunRepository(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite database: %w", err)
		}
		log.Printf("SQLite export run history initialized at %s", cfg.Database.Path)
		return repo, nil
	case "postgres":
		repo, err := storage.NewPostgresExportRunRepository(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL database: %w", err)
		}
		log.Printf("PostgreSQL export run history initialized at %s:%d", cfg.Database.Host, cfg.Database.Port)
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}

// newListeners returns the lifecycle listeners shared by every controller and
// a function releasing what they hold
func newListeners(cfg *config.Config) ([]ports.ExportListener, func(), error) {
	listeners := []ports.ExportListener{notifier.NewMetricsListener()}
	cleanup := func() {}

	switch cfg.ExportNotifierImpl {
	case "kafka":
		if !cfg.Kafka.Enabled {
			log.Printf("Kafka disabled - using null notifier (no notifications will be sent)")
			listeners = append(listeners, notifier.NewNullExportNotifier())
			break
		}

		log.Printf("Kafka producer config - brokers: %v, topic: %s", cfg.Kafka.Brokers, cfg.Kafka.Topic)
		producer, err := messaging.NewKafkaProducer(cfg.Kafka)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Kafka producer: %w", err)
		}
		cleanup = func() {
			if err := producer.Close(); err != nil {
				log.Printf("Error closing Kafka producer: %v", err)
			}
		}
		listeners = append(listeners, notifier.NewKafkaExportNotifier(producer))
		log.Printf("Export notifier initialized (platform notifications)")
	case "null":
		listeners = append(listeners, notifier.NewNullExportNotifier())
		log.Printf("Using null notifier (no notifications will be sent)")
	default:
		return nil, nil, fmt.Errorf("unsupported EXPORT_NOTIFIER_IMPL type: %s", cfg.ExportNotifierImpl)
	}

	return listeners, cleanup, nil
}

func newGenerator(cfg *config.Config) *artifacts.Generator {
	return artifacts.NewGenerator(artifacts.WithNativeExcel(cfg.Export.NativeExcel))
}

func controllerSettings(cfg *config.Config) usecases.ControllerSettings {
	settings := usecases.DefaultControllerSettings()
	settings.TickInterval = cfg.Export.TickInterval
	settings.DisplayDuration = cfg.Export.DisplayDuration
	settings.DispatchTimeout = cfg.Export.DispatchTimeout
	return settings
}

// ownerDir gives each owner its own directory under base. Owner parts are
// escaped so they cannot leave base.
func ownerDir(base, owner string) string {
	return filepath.Join(base, url.PathEscape(owner))
}
