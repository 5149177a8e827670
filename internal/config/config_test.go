package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker   = "localhost:9092"
	testMapboxToken = "pk.test-token"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverFile, cfg.DatasetDriver)
	assert.Equal(t, "./data/flooddata.csv", cfg.DatasetPath)
	assert.Equal(t, "us-east-1", cfg.DatasetS3Region)
	assert.False(t, cfg.DatasetS3PathStyle)
	assert.Equal(t, "floods", cfg.DatasetTable)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5, cfg.MapZoom)
	assert.Equal(t, 10*time.Second, cfg.CounterAnimation)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
	assert.False(t, cfg.KafkaExportEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "flood-events", cfg.KafkaExportTopic)
	assert.Equal(t, "./data/flooddata.csv", cfg.DatasetSource())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATASET_DRIVER", "S3")
	t.Setenv("DATASET_S3_BUCKET", "floods")
	t.Setenv("DATASET_S3_KEY", "india/flooddata.csv")
	t.Setenv("DATASET_S3_REGION", "ap-south-1")
	t.Setenv("DATASET_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("DATASET_S3_PATH_STYLE", "true")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MAP_ZOOM", "7")
	t.Setenv("COUNTER_ANIMATION", "3s")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")
	t.Setenv("KAFKA_EXPORT_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_EXPORT_TOPIC", "custom-export")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverS3, cfg.DatasetDriver)
	assert.Equal(t, "floods", cfg.DatasetS3Bucket)
	assert.Equal(t, "india/flooddata.csv", cfg.DatasetS3Key)
	assert.Equal(t, "ap-south-1", cfg.DatasetS3Region)
	assert.Equal(t, "http://localhost:9000", cfg.DatasetS3Endpoint)
	assert.True(t, cfg.DatasetS3PathStyle)
	assert.Equal(t, "s3://floods/india/flooddata.csv", cfg.DatasetSource())
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 7, cfg.MapZoom)
	assert.Equal(t, 3*time.Second, cfg.CounterAnimation)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
	assert.True(t, cfg.KafkaExportEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-export", cfg.KafkaExportTopic)
}

func TestLoad_SQLDrivers(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverPostgres} {
		t.Run(driver, func(t *testing.T) {
			t.Setenv("DATASET_DRIVER", driver)
			t.Setenv("DATASET_DSN", "file:floods.db")
			t.Setenv("DATASET_TABLE", "public.flood_events")

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, driver, cfg.DatasetDriver)
			assert.Equal(t, "public.flood_events", cfg.DatasetTable)
			assert.Equal(t, driver+":public.flood_events", cfg.DatasetSource())
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "shutdown timeout", env: map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, wantErr: "SHUTDOWN_TIMEOUT"},
		{name: "negative shutdown timeout", env: map[string]string{"SHUTDOWN_TIMEOUT": "-1s"}, wantErr: "SHUTDOWN_TIMEOUT"},
		{name: "mapbox timeout", env: map[string]string{"MAPBOX_TIMEOUT": "bad"}, wantErr: "MAPBOX_TIMEOUT"},
		{name: "counter animation", env: map[string]string{"COUNTER_ANIMATION": "0s"}, wantErr: "COUNTER_ANIMATION"},
		{name: "map zoom not a number", env: map[string]string{"MAP_ZOOM": "far"}, wantErr: "MAP_ZOOM"},
		{name: "map zoom out of range", env: map[string]string{"MAP_ZOOM": "25"}, wantErr: "MAP_ZOOM"},
		{name: "path style", env: map[string]string{"DATASET_S3_PATH_STYLE": "maybe"}, wantErr: "DATASET_S3_PATH_STYLE"},
		{name: "export enabled", env: map[string]string{"KAFKA_EXPORT_ENABLED": "yes please"}, wantErr: "KAFKA_EXPORT_ENABLED"},
		{name: "unknown driver", env: map[string]string{"DATASET_DRIVER": "ftp"}, wantErr: "DATASET_DRIVER"},
		{name: "s3 without key", env: map[string]string{"DATASET_DRIVER": "s3", "DATASET_S3_BUCKET": "b"}, wantErr: "DATASET_S3_KEY"},
		{name: "sqlite without dsn", env: map[string]string{"DATASET_DRIVER": "sqlite"}, wantErr: "DATASET_DSN"},
		{
			name:    "table injection",
			env:     map[string]string{"DATASET_DRIVER": "postgres", "DATASET_DSN": "postgres://x", "DATASET_TABLE": "floods; DROP TABLE floods"},
			wantErr: "DATASET_TABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}
