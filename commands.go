package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"customerstream/loader/appcontext"
	"customerstream/loader/config"
	"customerstream/loader/ingest"
	"customerstream/loader/publish"
	"customerstream/loader/runlog"
	"customerstream/loader/storage"
	"customerstream/loader/stream"
	"customerstream/loader/synthetic"
)

type application struct {
	logger *slog.Logger
	cfg    *config.Config
}

func (a *application) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "customer-stream",
		Short: "Validate customer CSV files and publish them to Kafka",
		Long: `customer-stream reads a customer CSV file, validates every row and publishes
the valid ones to a Kafka topic keyed by customer id.

Configuration is read from the environment (and an optional .env file):
  CSV_FILE, KAFKA_TOPIC, KAFKA_BROKERS, KAFKA_CLIENT_ID, VALUE_FORMAT,
  RUN_LOG_ENABLED, MONGO_URI, LOG_LEVEL, LOG_FORMAT, CONNECT_TIMEOUT

Examples:
  customer-stream ingest --file data/customers.csv
  customer-stream ingest --dry-run
  customer-stream generate-synthetic-data --rows 1000 --invalid-ratio 0.1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			config.LoadDotEnv(ctx, a.logger)

			cfg, err := config.LoadConfig(ctx, a.logger)
			if err != nil {
				return errors.Wrap(err, "failed to load configuration")
			}
			a.cfg = cfg
			a.logger = appcontext.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	root.AddCommand(a.ingestCommand(), a.generateCommand())
	return root
}

func (a *application) ingestCommand() *cobra.Command {
	var (
		file   string
		topic  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Publish the valid rows of a customer CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file != "" {
				a.cfg.CSVFile = file
			}
			if topic != "" {
				a.cfg.Topic = topic
			}
			return a.runIngest(appcontext.WithLogger(cmd.Context(), a.logger), dryRun)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to ingest (overrides CSV_FILE)")
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "destination topic (overrides KAFKA_TOPIC)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and encode rows without contacting Kafka")
	return cmd
}

func (a *application) runIngest(ctx context.Context, dryRun bool) error {
	logger := appcontext.LoggerFromContext(ctx)

	codec, err := publish.CodecFor(a.cfg.ValueFormat)
	if err != nil {
		return err
	}

	var publisher stream.Publisher
	if dryRun {
		logger.InfoContext(ctx, "Dry run: records will not be sent to Kafka")
		publisher = publish.NewLog(codec)
	} else {
		kafka, kafkaErr := publish.NewKafka(publish.KafkaConfig{
			Brokers:  a.cfg.Brokers,
			ClientID: a.cfg.ClientID,
			Codec:    codec,
			Logger:   logger,
		})
		if kafkaErr != nil {
			return kafkaErr
		}
		defer kafka.Close()

		pingCtx, cancel := context.WithTimeout(ctx, a.cfg.ConnectTimeout)
		defer cancel()
		if err = kafka.Ping(pingCtx); err != nil {
			logger.ErrorContext(ctx, "Failed to reach Kafka", "brokers", a.cfg.Brokers, "error", err)
			return errors.Wrap(err, "connection to Kafka failed")
		}
		logger.InfoContext(ctx, "Successfully connected to Kafka.", "brokers", a.cfg.Brokers)
		publisher = kafka
	}

	var runs runlog.Repository
	if a.cfg.RunLogEnabled {
		connectCtx, cancel := context.WithTimeout(ctx, a.cfg.ConnectTimeout)
		defer cancel()

		client, mongoErr := storage.ConnectToMongoDB(connectCtx, a.cfg.MongoURI)
		if mongoErr != nil {
			logger.ErrorContext(ctx, "Failed to connect to MongoDB", "error", mongoErr)
			return errors.Wrap(mongoErr, "connection to MongoDB failed")
		}
		defer func() {
			if deferErr := client.Disconnect(context.Background()); deferErr != nil {
				logger.ErrorContext(ctx, "Error disconnecting from MongoDB", "error", deferErr)
			}
		}()
		runs = storage.NewMongoRepository(storage.NewMongoProvider(client))
	}

	sink := ingest.NewSink(ingest.SinkDependencies{
		Config:    a.cfg,
		Publisher: publisher,
		Runs:      runs,
	})
	if _, err = sink.Ingest(ctx); err != nil {
		return err
	}

	return nil
}

func (a *application) generateCommand() *cobra.Command {
	var (
		rows         int
		dir          string
		invalidRatio float64
		seed         int64
	)

	cmd := &cobra.Command{
		Use:   "generate-synthetic-data",
		Short: "Write a sample customer CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("rows") {
				rows = a.cfg.SyntheticDataRows
			}
			if !cmd.Flags().Changed("dir") {
				dir = a.cfg.SyntheticDataDir
			}

			a.logger.InfoContext(ctx, "Generating synthetic data", "rows", rows, "dir", dir)
			path, err := synthetic.GenerateSyntheticData(rows, dir, invalidRatio, seed)
			if err != nil {
				return errors.Wrap(err, "failed to generate synthetic data")
			}
			a.logger.InfoContext(ctx, "Synthetic data generated successfully", "file", path)
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 0, "number of rows to generate (default SYNTHETIC_DATA_ROWS)")
	cmd.Flags().StringVar(&dir, "dir", "", "directory to write synthetic data to (default SYNTHETIC_DATA_DIR)")
	cmd.Flags().Float64Var(&invalidRatio, "invalid-ratio", 0.1, "fraction of rows carrying a deliberate defect")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	return cmd
}
