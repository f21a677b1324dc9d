// Package ingest wires configuration, the broker publisher and the run audit trail
// around a single stream ingestion run.
package ingest

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"customerstream/loader/appcontext"
	"customerstream/loader/config"
	"customerstream/loader/runlog"
	"customerstream/loader/stream"
)

// SinkDependencies holds all the dependencies for the Sink.
type SinkDependencies struct {
	Config    *config.Config
	Publisher stream.Publisher
	// Runs is optional; when nil no audit entry is written.
	Runs runlog.Repository
	// Opener is optional; the CSV opener is used when nil.
	Opener stream.Opener
}

// Sink orchestrates one ingestion run of the configured file.
type Sink struct {
	deps     SinkDependencies
	ingestor *stream.Ingestor
	now      func() time.Time
}

// NewSink creates a new Sink instance.
func NewSink(deps SinkDependencies) *Sink {
	opts := []stream.Option{stream.WithTopic(deps.Config.Topic)}
	if deps.Opener != nil {
		opts = append(opts, stream.WithOpener(deps.Opener))
	}

	return &Sink{
		deps:     deps,
		ingestor: stream.NewIngestor(deps.Publisher, opts...),
		now:      time.Now,
	}
}

// Ingest runs the configured file through the stream ingestor under a fresh run id.
func (s *Sink) Ingest(ctx context.Context) (stream.Summary, error) {
	ctx = appcontext.WithRunID(ctx, uuid.NewString())
	logger := appcontext.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "Starting data ingestion process", "file", s.deps.Config.CSVFile)

	started := s.now()
	summary, err := s.ingestor.Ingest(ctx, s.deps.Config.CSVFile)
	s.recordRun(ctx, started, summary, err)

	if err != nil {
		logger.ErrorContext(ctx, "Error ingesting CSV file", "file", s.deps.Config.CSVFile, "error", err)
		return stream.Summary{}, errors.Wrap(err, "ingestion of CSV file failed")
	}

	logger.DebugContext(ctx, "Data ingestion process completed successfully.", "summary", summary)
	return summary, nil
}

// recordRun writes the audit entry. Failing to record is logged, never fatal.
func (s *Sink) recordRun(ctx context.Context, started time.Time, summary stream.Summary, runErr error) {
	if s.deps.Runs == nil {
		return
	}

	entry := runlog.Entry{
		RunID:        appcontext.RunIDFromContext(ctx),
		Source:       s.deps.Config.CSVFile,
		Topic:        s.ingestor.Topic(),
		Status:       runlog.StatusCompleted,
		SuccessCount: summary.SuccessCount,
		FailureCount: summary.FailureCount,
		ElapsedMS:    summary.ElapsedMillis(),
		StartedAt:    started.UTC(),
		FinishedAt:   s.now().UTC(),
	}
	if runErr != nil {
		entry.Status = runlog.StatusFailed
		entry.Error = runErr.Error()
	}

	if err := s.deps.Runs.RecordRun(ctx, entry); err != nil {
		appcontext.LoggerFromContext(ctx).ErrorContext(ctx, "Failed to record ingestion run", "error", err)
	}
}
