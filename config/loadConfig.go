package config

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default values.
const (
	defaultCSVFile           = "data/sample-customers.csv"
	defaultTopic             = "customers.csv.ingested"
	defaultBrokers           = "localhost:9092"
	defaultClientID          = "customer-stream-loader"
	defaultValueFormat       = "json"
	defaultRunLogEnabled     = false
	defaultMongoURI          = "mongodb://localhost:27017/customerstream"
	defaultMongoPort         = "27017"
	defaultLogLevel          = "info"
	defaultLogFormat         = "text"
	defaultConnectTimeout    = 30 * time.Second
	defaultSyntheticDataDir  = "tmp/synthetic"
	defaultSyntheticDataRows = 100
	keyMongoHost             = "mongo_host"
	keyMongoUser             = "mongo_user"
	keyMongoPassword         = "mongo_password"
)

// SetDefaults registers every configuration key with its default value.
// Each key is read from the environment variable of the same name, upper-cased.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("csv_file", defaultCSVFile)
	v.SetDefault("kafka_topic", defaultTopic)
	v.SetDefault("kafka_brokers", defaultBrokers)
	v.SetDefault("kafka_client_id", defaultClientID)
	v.SetDefault("value_format", defaultValueFormat)
	v.SetDefault("run_log_enabled", defaultRunLogEnabled)
	v.SetDefault("mongo_uri", "")
	v.SetDefault(keyMongoHost, "")
	v.SetDefault(keyMongoUser, "")
	v.SetDefault(keyMongoPassword, "")
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("log_format", defaultLogFormat)
	v.SetDefault("connect_timeout", defaultConnectTimeout)
	v.SetDefault("synthetic_data_dir", defaultSyntheticDataDir)
	v.SetDefault("synthetic_data_rows", defaultSyntheticDataRows)
}

// NewViper returns a viper instance bound to the process environment.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// LoadDotEnv loads a .env file from the working directory when one exists.
// Variables already present in the environment win.
func LoadDotEnv(ctx context.Context, logger *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.DebugContext(ctx, "No .env file loaded, using environment variables", "error", err)
		return
	}
	logger.DebugContext(ctx, "Loaded .env file")
}

// LoadConfig loads the application configuration from environment variables or uses default values.
func LoadConfig(ctx context.Context, logger *slog.Logger) (*Config, error) {
	return LoadWithViper(ctx, logger, NewViper())
}

// LoadWithViper loads and validates configuration from an existing viper instance.
func LoadWithViper(ctx context.Context, logger *slog.Logger, v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg.Brokers = splitBrokers(cfg.Brokers)
	cfg.MongoURI = formatMongoURI(ctx, cfg.MongoURI, v, logger)

	logger.DebugContext(ctx, "Configuration loaded",
		"csv_file", cfg.CSVFile,
		"topic", cfg.Topic,
		"brokers", cfg.Brokers,
		"value_format", cfg.ValueFormat,
		"run_log_enabled", cfg.RunLogEnabled,
	)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation")
	}

	return &cfg, nil
}

// splitBrokers trims entries and drops blanks; a single comma-joined entry is split.
func splitBrokers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		for _, b := range strings.Split(entry, ",") {
			if b = strings.TrimSpace(b); b != "" {
				out = append(out, b)
			}
		}
	}
	return out
}

// formatMongoURI formats mongo settings to a url and return the result.
func formatMongoURI(
	ctx context.Context,
	mongoURI string,
	v *viper.Viper,
	logger *slog.Logger,
) string {
	if mongoURI != "" {
		logger.DebugContext(ctx, "Using MongoDB URI from environment variable")
		return mongoURI
	}

	mongoHost := v.GetString(keyMongoHost)
	mongoUser := v.GetString(keyMongoUser)
	mongoPassword := v.GetString(keyMongoPassword)

	if mongoHost != "" && mongoUser != "" && mongoPassword != "" {
		hostPort := net.JoinHostPort(mongoHost, defaultMongoPort)
		logger.DebugContext(ctx, "Created MongoDB URI from user, password, and host", "host", mongoHost)
		return fmt.Sprintf(
			"mongodb://%s:%s@%s/customerstream?authSource=admin",
			mongoUser,
			mongoPassword,
			hostPort,
		)
	}

	logger.DebugContext(ctx, "Using default MongoDB URI", "uri", defaultMongoURI)
	return defaultMongoURI
}
