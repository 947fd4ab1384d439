package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Empty(t, cfg.KittiRoot)
	assert.Empty(t, cfg.CityscapesRoot)
	assert.Empty(t, cfg.DatasetsFile)
	assert.Equal(t, []string{"rain", "fog"}, cfg.Weathers)
	assert.False(t, cfg.Cleanup)
	assert.False(t, cfg.SkipDownload)
	assert.Empty(t, cfg.HTTPAddr)
	assert.Equal(t, 30*time.Minute, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "weather-augment-runs", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("OUTPUT_DIR", "/data/out")
	t.Setenv("BASE_URL", "http://mirror.local/weather")
	t.Setenv("KITTI_ROOT", "/data/kitti")
	t.Setenv("CITYSCAPES_ROOT", "/data/cityscapes")
	t.Setenv("DATASETS_FILE", "/etc/datasets.yaml")
	t.Setenv("WEATHER", "fog")
	t.Setenv("CLEANUP", "true")
	t.Setenv("SKIP_DOWNLOAD", "1")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("HTTP_TIMEOUT", "5m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "runs")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, "http://mirror.local/weather/", cfg.BaseURL)
	assert.Equal(t, "/data/kitti", cfg.KittiRoot)
	assert.Equal(t, "/data/cityscapes", cfg.CityscapesRoot)
	assert.Equal(t, "/etc/datasets.yaml", cfg.DatasetsFile)
	assert.Equal(t, []string{"fog"}, cfg.Weathers)
	assert.True(t, cfg.Cleanup)
	assert.True(t, cfg.SkipDownload)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Minute, cfg.HTTPTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "runs", cfg.KafkaTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidHTTPTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
}

func TestLoad_InvalidWeather(t *testing.T) {
	t.Setenv("WEATHER", "rain,snow")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snow")
}

func TestLoad_EmptyWeather(t *testing.T) {
	t.Setenv("WEATHER", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER")
}

func TestLoad_InvalidBool(t *testing.T) {
	t.Setenv("CLEANUP", "maybe")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLEANUP")
}

func TestParseList(t *testing.T) {
	assert.Nil(t, ParseList(""))
	assert.Equal(t, []string{"a", "b"}, ParseList(" a,,b ,"))
}
