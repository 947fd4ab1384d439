package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultBaseURL hosts the weather-augment archives and checksum manifests.
const DefaultBaseURL = "https://www.rocq.inria.fr/rits_files/computer-vision/weather-augment/"

// Config holds all run settings, populated from environment variables and
// overridable by command-line flags.
type Config struct {
	OutputDir      string
	BaseURL        string
	KittiRoot      string
	CityscapesRoot string
	DatasetsFile   string
	Weathers       []string
	Sequences      []string
	Cleanup        bool
	SkipDownload   bool

	HTTPAddr        string
	HTTPTimeout     time.Duration
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Run event publishing; disabled when no brokers are set.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	httpTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("HTTP_TIMEOUT", "30m"))
	if err != nil || httpTimeout <= 0 {
		return nil, errors.New("invalid HTTP_TIMEOUT")
	}

	cleanup, err := parseBool("CLEANUP", false)
	if err != nil {
		return nil, err
	}
	skipDownload, err := parseBool("SKIP_DOWNLOAD", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OutputDir:       sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),
		BaseURL:         sharedcfg.EnvOrDefault("BASE_URL", DefaultBaseURL),
		KittiRoot:       os.Getenv("KITTI_ROOT"),
		CityscapesRoot:  os.Getenv("CITYSCAPES_ROOT"),
		DatasetsFile:    os.Getenv("DATASETS_FILE"),
		Weathers:        ParseList(sharedcfg.EnvOrDefault("WEATHER", "rain,fog")),
		Cleanup:         cleanup,
		SkipDownload:    skipDownload,
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		HTTPTimeout:     httpTimeout,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,
		KafkaBrokers:    sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weather-augment-runs"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that flags may have overridden after Load.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR is required")
	}
	if c.BaseURL == "" {
		return errors.New("BASE_URL is required")
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if len(c.Weathers) == 0 {
		return errors.New("WEATHER must select at least one of rain, fog")
	}
	for _, w := range c.Weathers {
		if w != "rain" && w != "fog" {
			return fmt.Errorf("invalid WEATHER %q: want rain or fog", w)
		}
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// ParseList splits a comma-separated value, dropping blanks.
func ParseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
