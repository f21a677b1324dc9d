package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	CSVFile           string        `mapstructure:"csv_file"`
	Topic             string        `mapstructure:"kafka_topic"`
	Brokers           []string      `mapstructure:"kafka_brokers"`
	ClientID          string        `mapstructure:"kafka_client_id"`
	ValueFormat       string        `mapstructure:"value_format"`
	RunLogEnabled     bool          `mapstructure:"run_log_enabled"`
	MongoURI          string        `mapstructure:"mongo_uri"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	SyntheticDataDir  string        `mapstructure:"synthetic_data_dir"`
	SyntheticDataRows int           `mapstructure:"synthetic_data_rows"`
}

// Validate checks that the configuration is usable and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.CSVFile) == "" {
		errs = append(errs, "CSV_FILE must not be empty")
	}
	if strings.TrimSpace(c.Topic) == "" {
		errs = append(errs, "KAFKA_TOPIC must not be empty")
	}
	if len(c.Brokers) == 0 {
		errs = append(errs, "KAFKA_BROKERS must name at least one broker")
	}

	switch strings.ToLower(c.ValueFormat) {
	case "json", "msgpack":
	default:
		errs = append(errs, fmt.Sprintf("VALUE_FORMAT (%q) must be one of: json, msgpack", c.ValueFormat))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.LogLevel))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.LogFormat)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.LogFormat))
	}

	if c.ConnectTimeout <= 0 {
		errs = append(errs, "CONNECT_TIMEOUT must be positive")
	}
	if c.SyntheticDataRows < 0 {
		errs = append(errs, "SYNTHETIC_DATA_ROWS must be non-negative")
	}
	if c.RunLogEnabled && c.MongoURI == "" {
		errs = append(errs, "MONGO_URI is required when RUN_LOG_ENABLED is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
