package publish

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/twmb/franz-go/pkg/kgo"

	"customerstream/loader/appcontext"
	"customerstream/loader/customer"
)

const (
	headerContentType = "content-type"
	headerRunID       = "run-id"
)

// ErrDelivery marks a record the broker did not accept.
var ErrDelivery = errors.New("kafka delivery failed")

// producer is the subset of *kgo.Client the publisher needs.
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// KafkaConfig configures NewKafka.
type KafkaConfig struct {
	Brokers  []string
	ClientID string
	Codec    Codec
	Logger   *slog.Logger
}

// Kafka publishes records asynchronously through a franz-go client.
//
// Publish does not wait for acknowledgement. The first delivery failure reported by
// the client is kept and returned, wrapped in ErrDelivery, by the next Publish or by
// Flush, so a lost record always ends the run with an error.
type Kafka struct {
	client producer
	codec  Codec
	logger *slog.Logger

	mu          sync.Mutex
	deliveryErr error
	acked       atomic.Int64
}

// NewKafka creates a client for cfg.Brokers. No connection is made until Ping or
// the first Publish.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.WithLogger(newKgoLogger(cfg.Logger)),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kafka client")
	}

	return newKafka(client, cfg.Codec, cfg.Logger), nil
}

func newKafka(client producer, codec Codec, logger *slog.Logger) *Kafka {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Kafka{client: client, codec: codec, logger: logger}
}

// Ping checks that at least one broker is reachable.
func (k *Kafka) Ping(ctx context.Context) error {
	if err := k.client.Ping(ctx); err != nil {
		return errors.Wrap(err, "failed to ping kafka")
	}
	return nil
}

// Publish encodes record and queues it for topic under key.
func (k *Kafka) Publish(ctx context.Context, topic, key string, record customer.Record) error {
	if err := k.failure(); err != nil {
		return err
	}

	value, err := k.codec.Encode(record.Payload())
	if err != nil {
		return errors.Wrapf(err, "failed to encode record %s", key)
	}

	headers := []kgo.RecordHeader{{Key: headerContentType, Value: []byte(k.codec.ContentType())}}
	if runID := appcontext.RunIDFromContext(ctx); runID != "" {
		headers = append(headers, kgo.RecordHeader{Key: headerRunID, Value: []byte(runID)})
	}

	k.client.Produce(ctx, &kgo.Record{
		Topic:   topic,
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	}, k.promise)

	return nil
}

// Flush blocks until every queued record is acknowledged or failed.
func (k *Kafka) Flush(ctx context.Context) error {
	if err := k.client.Flush(ctx); err != nil {
		return errors.Wrap(err, "failed to flush kafka producer")
	}
	if err := k.failure(); err != nil {
		return err
	}
	appcontext.LoggerFromContext(ctx).DebugContext(ctx, "Kafka producer flushed", "acked", k.acked.Load())
	return nil
}

// Acked is the number of records the broker has acknowledged so far.
func (k *Kafka) Acked() int64 {
	return k.acked.Load()
}

// Close releases the client. Unflushed records are dropped.
func (k *Kafka) Close() {
	k.client.Close()
}

func (k *Kafka) promise(r *kgo.Record, err error) {
	if err == nil {
		k.acked.Add(1)
		return
	}

	k.logger.Error("Kafka delivery failed", "topic", r.Topic, "key", string(r.Key), "error", err)

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.deliveryErr == nil {
		k.deliveryErr = errors.Mark(
			errors.Wrapf(err, "record %s on topic %s", string(r.Key), r.Topic),
			ErrDelivery,
		)
	}
}

func (k *Kafka) failure() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.deliveryErr
}
