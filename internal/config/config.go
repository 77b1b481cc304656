package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Position source. When UseSynthetic is true (the default) the pipeline
	// ignores SourceURL/SourcePath and generates the synthetic trajectory.
	UseSynthetic bool
	SourceURL    string
	SourcePath   string

	RefreshInterval time.Duration

	// Kafka snapshot sink configuration.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// GetLogLevel implements observability.LoggerConfig.
func (c *Config) GetLogLevel() string { return c.LogLevel }

// GetLogFormat implements observability.LoggerConfig.
func (c *Config) GetLogFormat() string { return c.LogFormat }

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parseDurationEnv("REFRESH_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		UseSynthetic: envOrDefault("USE_SYNTHETIC", "true") == "true",
		SourceURL:    os.Getenv("SOURCE_URL"),
		SourcePath:   os.Getenv("SOURCE_PATH"),

		RefreshInterval: refreshInterval,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "vessel-positions"),
	}

	if cfg.SourceURL != "" && cfg.SourcePath != "" {
		return nil, errors.New("SOURCE_URL and SOURCE_PATH are mutually exclusive")
	}
	if !cfg.UseSynthetic && cfg.SourceURL == "" && cfg.SourcePath == "" {
		return nil, errors.New("USE_SYNTHETIC is false but no SOURCE_URL or SOURCE_PATH is set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
