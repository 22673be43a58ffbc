package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	clowder "github.com/redhatinsights/app-common-go/pkg/api/v1"

	"analytics-exporter/internal/core/domain"
)

// Config holds all application configuration
type Config struct {
	// Server configuration (with Clowder integration)
	Server ServerConfig `json:"server"`

	// Database configuration for export run history (uses Clowder when available)
	Database DatabaseConfig `json:"database"`

	// Kafka configuration (uses Clowder when available)
	Kafka KafkaConfig `json:"kafka"`

	// Metrics configuration (uses Clowder when available)
	Metrics MetricsConfig `json:"metrics"`

	// Export pipeline configuration
	Export ExportConfig `json:"export"`

	// Scheduled export configuration
	Schedule ScheduleConfig `json:"schedule"`

	ExportNotifierImpl string
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Port is the main HTTP server port
	Port int `json:"port"`

	// PrivatePort is the port for internal/admin endpoints
	PrivatePort int `json:"private_port"`

	// Host is the server bind address
	Host string `json:"host"`

	// ReadTimeout for HTTP requests
	ReadTimeout time.Duration `json:"read_timeout"`

	// WriteTimeout for HTTP responses
	WriteTimeout time.Duration `json:"write_timeout"`

	// ShutdownTimeout for graceful shutdown
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	// Type of database (memory, sqlite, postgres)
	Type string `json:"type"`

	// Path to SQLite database file
	Path string `json:"path"`

	// Host for postgres
	Host string `json:"host"`

	// Port for postgres
	Port int `json:"port"`

	// Name of the database
	Name string `json:"name"`

	// Username for database authentication
	Username string `json:"username"`

	// Password for database authentication
	Password string `json:"password"`

	// SSLMode for database connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode"`

	// MaxOpenConnections for connection pooling
	MaxOpenConnections int `json:"max_open_connections"`

	// MaxIdleConnections for connection pooling
	MaxIdleConnections int `json:"max_idle_connections"`

	// ConnectionMaxLifetime for connection recycling
	ConnectionMaxLifetime time.Duration `json:"connection_max_lifetime"`
}

// ConnectionString returns a PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Name, d.SSLMode)
}

// KafkaConfig contains Kafka connection settings
type KafkaConfig struct {
	// Enabled indicates if Kafka integration is active
	Enabled bool `json:"enabled"`

	// Brokers is a list of Kafka broker addresses
	Brokers []string `json:"brokers"`

	// Topic for export completion messages
	Topic string `json:"topic"`

	// ClientID for Kafka producer identification
	ClientID string `json:"client_id"`

	// Timeout for Kafka operations
	Timeout time.Duration `json:"timeout"`

	// Retries for failed message sends
	Retries int `json:"retries"`

	// CompressionType (none, gzip, snappy, lz4, zstd)
	CompressionType string `json:"compression_type"`

	// RequiredAcks (0=no ack, 1=leader ack, -1=all replicas ack)
	RequiredAcks int `json:"required_acks"`

	// SASL configuration for authentication
	SASL SASLConfig `json:"sasl"`

	// TLS configuration
	TLS TLSConfig `json:"tls"`
}

// SASLConfig contains SASL authentication settings
type SASLConfig struct {
	Enabled   bool   `json:"enabled"`
	Mechanism string `json:"mechanism"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// TLSConfig contains TLS settings
type TLSConfig struct {
	Enabled            bool `json:"enabled"`
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

// MetricsConfig contains metrics and monitoring settings
type MetricsConfig struct {
	// Port for metrics endpoint
	Port int `json:"port"`

	// Path for metrics endpoint
	Path string `json:"path"`

	// Enabled indicates if metrics are active
	Enabled bool `json:"enabled"`
}

// ExportConfig tunes the export progress simulation and where downloads go
type ExportConfig struct {
	// TickInterval between progress increments
	TickInterval time.Duration `json:"tick_interval"`

	// DisplayDuration a completed job stays visible before the surface closes
	DisplayDuration time.Duration `json:"display_duration"`

	// DispatchTimeout bounds a single download save
	DispatchTimeout time.Duration `json:"dispatch_timeout"`

	// NativeExcel produces real xlsx workbooks for the excel format
	NativeExcel bool `json:"native_excel"`

	// Sink selects the download sink (memory, filesystem)
	Sink string `json:"sink"`

	// OutputDir is where the filesystem sink saves downloads
	OutputDir string `json:"output_dir"`
}

// ScheduleConfig describes the optional recurring export
type ScheduleConfig struct {
	// Expression is a 5-field cron expression. Empty disables scheduling.
	Expression string `json:"expression"`

	// Format of the scheduled export
	Format string `json:"format"`

	// Metrics selected for the scheduled export
	Metrics []string `json:"metrics"`
}

func (s ScheduleConfig) Enabled() bool {
	return s.Expression != ""
}

// LoadConfig loads configuration from app-common-go (Clowder) with fallback to environment variables
func LoadConfig() (*Config, error) {
	var clowderConfig *clowder.AppConfig

	// Try to load Clowder configuration first
	if clowder.IsClowderEnabled() {
		log.Println("Clowder configuration enabled")

		clowderConfig = clowder.LoadedConfig
		if clowderConfig == nil {
			return nil, fmt.Errorf("failed to load Clowder configuration (nil)")
		}
	}

	config := &Config{}

	config.Server = loadServerConfig(clowderConfig)
	config.Database = loadDatabaseConfig(clowderConfig)
	config.Kafka = loadKafkaConfig(clowderConfig)
	config.Metrics = loadMetricsConfig(clowderConfig)
	config.Export = loadExportConfig()
	config.Schedule = loadScheduleConfig()

	config.ExportNotifierImpl = getEnv("EXPORT_NOTIFIER_IMPL", "kafka")

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadServerConfig loads server configuration with Clowder integration
func loadServerConfig(clowderConfig *clowder.AppConfig) ServerConfig {
	port := getEnvAsInt("PORT", 5000)
	privatePort := getEnvAsInt("PRIVATE_PORT", 9090)
	host := getEnv("HOST", "0.0.0.0")

	if clowderConfig != nil {
		if clowderConfig.PublicPort != nil {
			port = *clowderConfig.PublicPort
		}
		if clowderConfig.PrivatePort != nil {
			privatePort = *clowderConfig.PrivatePort
		}
	}

	return ServerConfig{
		Port:            port,
		PrivatePort:     privatePort,
		Host:            host,
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// loadDatabaseConfig loads database configuration with Clowder integration
func loadDatabaseConfig(clowderConfig *clowder.AppConfig) DatabaseConfig {
	dbType := getEnv("DB_TYPE", "sqlite")
	dbPath := getEnv("DB_PATH", "./export_runs.db")
	host := getEnv("DB_HOST", "localhost")
	port := getEnvAsInt("DB_PORT", 5432)
	name := getEnv("DB_NAME", "analytics_exporter")
	username := getEnv("DB_USERNAME", "")
	password := getEnv("DB_PASSWORD", "")
	sslMode := getEnv("DB_SSL_MODE", "disable")

	// Clowder always provides PostgreSQL
	if clowderConfig != nil && clowderConfig.Database != nil {
		dbType = "postgres"
		host = clowderConfig.Database.Hostname
		port = clowderConfig.Database.Port
		name = clowderConfig.Database.Name
		username = clowderConfig.Database.Username
		password = clowderConfig.Database.Password
		sslMode = clowderConfig.Database.SslMode
	}

	return DatabaseConfig{
		Type:                  dbType,
		Path:                  dbPath,
		Host:                  host,
		Port:                  port,
		Name:                  name,
		Username:              username,
		Password:              password,
		SSLMode:               sslMode,
		MaxOpenConnections:    getEnvAsInt("DB_MAX_OPEN_CONNECTIONS", 25),
		MaxIdleConnections:    getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
		ConnectionMaxLifetime: getEnvAsDuration("DB_CONNECTION_MAX_LIFETIME", 5*time.Minute),
	}
}

// loadKafkaConfig loads Kafka configuration with Clowder integration
func loadKafkaConfig(clowderConfig *clowder.AppConfig) KafkaConfig {
	brokers := getEnvAsStringSlice("KAFKA_BROKERS", []string{})
	topic := getEnv("KAFKA_TOPIC", "platform.analytics.exports")
	enabled := len(brokers) > 0

	saslConfig := SASLConfig{
		Enabled:   getEnvAsBool("KAFKA_SASL_ENABLED", false),
		Mechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
		Username:  getEnv("KAFKA_SASL_USERNAME", ""),
		Password:  getEnv("KAFKA_SASL_PASSWORD", ""),
	}

	tlsConfig := TLSConfig{
		Enabled:            getEnvAsBool("KAFKA_TLS_ENABLED", false),
		InsecureSkipVerify: getEnvAsBool("KAFKA_TLS_INSECURE_SKIP_VERIFY", false),
	}

	if clowderConfig != nil && clowderConfig.Kafka != nil {
		enabled = true
		brokers = []string{}

		for _, broker := range clowderConfig.Kafka.Brokers {
			brokers = append(brokers, fmt.Sprintf("%s:%d", broker.Hostname, *broker.Port))
		}

		// Resolve the requested topic name to the one Clowder provisioned
		for _, topicConfig := range clowderConfig.Kafka.Topics {
			if topicConfig.RequestedName == topic || topicConfig.Name == topic {
				topic = topicConfig.Name
				break
			}
		}

		if len(clowderConfig.Kafka.Brokers) > 0 && clowderConfig.Kafka.Brokers[0].Sasl != nil {
			sasl := clowderConfig.Kafka.Brokers[0].Sasl
			saslConfig.Enabled = true
			if sasl.SaslMechanism != nil {
				saslConfig.Mechanism = *sasl.SaslMechanism
			}
			if sasl.Username != nil {
				saslConfig.Username = *sasl.Username
			}
			if sasl.Password != nil {
				saslConfig.Password = *sasl.Password
			}
		}
	}

	return KafkaConfig{
		Enabled:         enabled,
		Brokers:         brokers,
		Topic:           topic,
		ClientID:        getEnv("KAFKA_CLIENT_ID", "analytics-exporter"),
		Timeout:         getEnvAsDuration("KAFKA_TIMEOUT", 30*time.Second),
		Retries:         getEnvAsInt("KAFKA_RETRIES", 5),
		CompressionType: getEnv("KAFKA_COMPRESSION", "snappy"),
		RequiredAcks:    getEnvAsInt("KAFKA_REQUIRED_ACKS", -1),
		SASL:            saslConfig,
		TLS:             tlsConfig,
	}
}

// loadMetricsConfig loads metrics configuration with Clowder integration
func loadMetricsConfig(clowderConfig *clowder.AppConfig) MetricsConfig {
	port := getEnvAsInt("METRICS_PORT", 8080)
	path := getEnv("METRICS_PATH", "/metrics")

	if clowderConfig != nil {
		port = clowderConfig.MetricsPort
		path = clowderConfig.MetricsPath
	}

	return MetricsConfig{
		Port:    port,
		Path:    path,
		Enabled: getEnvAsBool("METRICS_ENABLED", true),
	}
}

func loadExportConfig() ExportConfig {
	return ExportConfig{
		TickInterval:    getEnvAsDuration("EXPORT_TICK_INTERVAL", 200*time.Millisecond),
		DisplayDuration: getEnvAsDuration("EXPORT_DISPLAY_DURATION", 2*time.Second),
		DispatchTimeout: getEnvAsDuration("EXPORT_DISPATCH_TIMEOUT", 30*time.Second),
		NativeExcel:     getEnvAsBool("EXPORT_NATIVE_EXCEL", false),
		Sink:            getEnv("EXPORT_SINK", "memory"),
		OutputDir:       getEnv("EXPORT_OUTPUT_DIR", "./exports"),
	}
}

func loadScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		Expression: getEnv("EXPORT_SCHEDULE", ""),
		Format:     getEnv("EXPORT_SCHEDULE_FORMAT", "csv"),
		Metrics:    getEnvAsStringSlice("EXPORT_SCHEDULE_METRICS", []string{"revenue", "users", "conversion", "products"}),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
	}
	if c.Server.PrivatePort < 1 || c.Server.PrivatePort > 65535 {
		return fmt.Errorf("invalid private port: %d", c.Server.PrivatePort)
	}

	switch c.Database.Type {
	case "":
		return fmt.Errorf("database type is required")
	case "memory":
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for SQLite")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic is required when kafka is enabled")
		}
	}

	if c.Export.TickInterval <= 0 {
		return fmt.Errorf("export tick interval must be positive")
	}
	if c.Export.DisplayDuration <= 0 {
		return fmt.Errorf("export display duration must be positive")
	}
	switch c.Export.Sink {
	case "memory":
	case "filesystem":
		if c.Export.OutputDir == "" {
			return fmt.Errorf("export output directory is required for the filesystem sink")
		}
	default:
		return fmt.Errorf("unsupported export sink: %s", c.Export.Sink)
	}

	if c.Schedule.Enabled() {
		if !domain.IsValidSchedule(c.Schedule.Expression) {
			return fmt.Errorf("invalid export schedule %q: %w", c.Schedule.Expression, domain.ErrInvalidSchedule)
		}
		if c.Export.OutputDir == "" {
			return fmt.Errorf("export output directory is required for scheduled exports")
		}
	}

	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
