package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Dataset drivers.
const (
	DriverFile     = "file"
	DriverS3       = "s3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Dataset source.
	DatasetDriver      string
	DatasetPath        string
	DatasetS3Bucket    string
	DatasetS3Key       string
	DatasetS3Region    string
	DatasetS3Endpoint  string
	DatasetS3PathStyle bool
	DatasetDSN         string
	DatasetTable       string

	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Presentation.
	MapZoom          int
	CounterAnimation time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Export.
	KafkaExportEnabled bool
	KafkaBrokers       []string
	KafkaExportTopic   string
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	counterAnimation, err := parsePositiveDuration("COUNTER_ANIMATION", "10s")
	if err != nil {
		return nil, err
	}

	mapZoom, err := strconv.Atoi(sharedcfg.EnvOrDefault("MAP_ZOOM", "5"))
	if err != nil || mapZoom < 1 || mapZoom > 18 {
		return nil, errors.New("invalid MAP_ZOOM: must be an integer between 1 and 18")
	}

	pathStyle, err := parseBool("DATASET_S3_PATH_STYLE")
	if err != nil {
		return nil, err
	}

	exportEnabled, err := parseBool("KAFKA_EXPORT_ENABLED")
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		DatasetDriver:      strings.ToLower(sharedcfg.EnvOrDefault("DATASET_DRIVER", DriverFile)),
		DatasetPath:        sharedcfg.EnvOrDefault("DATASET_PATH", "./data/flooddata.csv"),
		DatasetS3Bucket:    os.Getenv("DATASET_S3_BUCKET"),
		DatasetS3Key:       os.Getenv("DATASET_S3_KEY"),
		DatasetS3Region:    sharedcfg.EnvOrDefault("DATASET_S3_REGION", "us-east-1"),
		DatasetS3Endpoint:  os.Getenv("DATASET_S3_ENDPOINT"),
		DatasetS3PathStyle: pathStyle,
		DatasetDSN:         os.Getenv("DATASET_DSN"),
		DatasetTable:       sharedcfg.EnvOrDefault("DATASET_TABLE", "floods"),

		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		MapZoom:          mapZoom,
		CounterAnimation: counterAnimation,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		KafkaExportEnabled: exportEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaExportTopic:   sharedcfg.EnvOrDefault("KAFKA_EXPORT_TOPIC", "flood-events"),
	}

	if err := cfg.validateDataset(); err != nil {
		return nil, err
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaExportTopic == "" {
		return nil, errors.New("KAFKA_EXPORT_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func (c *Config) validateDataset() error {
	switch c.DatasetDriver {
	case DriverFile:
		if c.DatasetPath == "" {
			return errors.New("DATASET_PATH is required for the file driver")
		}
	case DriverS3:
		if c.DatasetS3Bucket == "" || c.DatasetS3Key == "" {
			return errors.New("DATASET_S3_BUCKET and DATASET_S3_KEY are required for the s3 driver")
		}
	case DriverSQLite, DriverPostgres:
		if c.DatasetDSN == "" {
			return fmt.Errorf("DATASET_DSN is required for the %s driver", c.DatasetDriver)
		}
		if !identPattern.MatchString(c.DatasetTable) {
			return fmt.Errorf("invalid DATASET_TABLE %q: must be a plain identifier", c.DatasetTable)
		}
	default:
		return fmt.Errorf("invalid DATASET_DRIVER %q: must be one of file, s3, sqlite, postgres", c.DatasetDriver)
	}
	return nil
}

// DatasetSource describes where the dataset is read from, for logs.
func (c *Config) DatasetSource() string {
	switch c.DatasetDriver {
	case DriverS3:
		return fmt.Sprintf("s3://%s/%s", c.DatasetS3Bucket, c.DatasetS3Key)
	case DriverSQLite, DriverPostgres:
		return c.DatasetDriver + ":" + c.DatasetTable
	default:
		return c.DatasetPath
	}
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
