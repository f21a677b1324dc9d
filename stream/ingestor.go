// Package stream drives a customer file through validation and onto the broker.
//
// An Ingestor reads rows strictly one at a time, in file order. A row that fails
// validation is counted and logged and the run moves on; failing to open or read
// the source, or a publish error, aborts the run and no Summary is returned.
package stream

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"customerstream/loader/appcontext"
	csvsource "customerstream/loader/csv"
	"customerstream/loader/customer"
)

// DefaultTopic receives customer records when no topic is configured.
const DefaultTopic = "customers.csv.ingested"

var (
	// ErrOpenSource marks a run that could not open its source file.
	ErrOpenSource = errors.New("cannot open ingestion source")
	// ErrReadSource marks a run aborted by an unreadable line.
	ErrReadSource = errors.New("cannot read ingestion source")
	// ErrPublish marks a run aborted by the publisher.
	ErrPublish = errors.New("publish failed")
)

// RowSource is a forward-only sequence of rows. Next returns io.EOF when exhausted.
type RowSource interface {
	Next() (customer.Row, error)
	Line() int
	Close() error
}

// Opener opens the source named by path.
type Opener func(ctx context.Context, path string) (RowSource, error)

// OpenCSV is the default Opener.
func OpenCSV(ctx context.Context, path string) (RowSource, error) {
	r, err := csvsource.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Ingestor publishes the valid rows of a source to a topic.
type Ingestor struct {
	publisher Publisher
	topic     string
	open      Opener
	now       func() time.Time
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithTopic overrides DefaultTopic. An empty topic is ignored.
func WithTopic(topic string) Option {
	return func(in *Ingestor) {
		if topic != "" {
			in.topic = topic
		}
	}
}

// WithOpener replaces the CSV opener.
func WithOpener(open Opener) Option {
	return func(in *Ingestor) { in.open = open }
}

// WithClock replaces time.Now for elapsed-time measurement.
func WithClock(now func() time.Time) Option {
	return func(in *Ingestor) { in.now = now }
}

// NewIngestor creates an Ingestor publishing through publisher.
func NewIngestor(publisher Publisher, opts ...Option) *Ingestor {
	in := &Ingestor{
		publisher: publisher,
		topic:     DefaultTopic,
		open:      OpenCSV,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Topic returns the destination topic.
func (in *Ingestor) Topic() string {
	return in.topic
}

// Ingest runs one pass over the source at path.
//
// Every valid row is published with its id as key. Invalid rows are counted and
// logged at warn level with their 1-based line number. The source is closed on
// every exit path.
func (in *Ingestor) Ingest(ctx context.Context, path string) (Summary, error) {
	logger := appcontext.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "Starting ingestion of CSV file", "file", path, "topic", in.topic)
	start := in.now()

	source, err := in.open(ctx, path)
	if err != nil {
		return Summary{}, errors.Mark(errors.Wrapf(err, "open source %s", path), ErrOpenSource)
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			logger.ErrorContext(ctx, "Error closing CSV source", "file", path, "error", closeErr)
		}
	}()

	var c counters
	for {
		row, readErr := source.Next()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return Summary{}, errors.Mark(readErr, ErrReadSource)
		}

		record, rej := customer.Validate(row)
		if rej != nil {
			c.addFailure()
			logger.WarnContext(ctx, "Invalid record",
				"line", source.Line(),
				"reason", rej.Error(),
				"kind", rej.Kind.String(),
			)
			continue
		}

		if err = in.publisher.Publish(ctx, in.topic, record.ID(), record); err != nil {
			return Summary{}, errors.Mark(
				errors.Wrapf(err, "publish record %q from line %d", record.ID(), source.Line()),
				ErrPublish,
			)
		}
		c.addSuccess()
	}

	if flusher, ok := in.publisher.(Flusher); ok {
		if err = flusher.Flush(ctx); err != nil {
			return Summary{}, errors.Mark(errors.Wrap(err, "flush publisher"), ErrPublish)
		}
	}

	summary := c.summary(in.now().Sub(start))
	logger.InfoContext(ctx, "Finished ingestion",
		"success", summary.SuccessCount,
		"failed", summary.FailureCount,
		"elapsed_ms", summary.ElapsedMillis(),
	)

	return summary, nil
}
