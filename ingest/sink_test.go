package ingest_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customerstream/loader/appcontext"
	"customerstream/loader/config"
	"customerstream/loader/customer"
	"customerstream/loader/ingest"
	"customerstream/loader/runlog"
	"customerstream/loader/stream"
)

// --- Mocks for dependencies ---

type mockPublisher struct {
	keys   []string
	topics []string
	runIDs []string
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, topic, key string, _ customer.Record) error {
	if m.err != nil {
		return m.err
	}
	m.keys = append(m.keys, key)
	m.topics = append(m.topics, topic)
	m.runIDs = append(m.runIDs, appcontext.RunIDFromContext(ctx))
	return nil
}

type mockRuns struct {
	entries []runlog.Entry
	err     error
}

func (m *mockRuns) RecordRun(_ context.Context, entry runlog.Entry) error {
	m.entries = append(m.entries, entry)
	return m.err
}

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return appcontext.WithLogger(context.Background(), logger)
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sample = "id,first_name,last_name,email,signup_date,loyalty_points\n" +
	"c-1,Ada,Lovelace,ada@example.com,2024-02-29,10\n" +
	"c-2,Alan,Turing,alan@example,2024-01-02,abc\n"

// --- Tests for Sink ---

func TestSink_Ingest_RecordsCompletedRun(t *testing.T) {
	cfg := &config.Config{CSVFile: writeCSV(t, sample), Topic: "crm.customers"}
	pub := &mockPublisher{}
	runs := &mockRuns{}

	summary, err := ingest.NewSink(ingest.SinkDependencies{Config: cfg, Publisher: pub, Runs: runs}).Ingest(testContext())
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.SuccessCount)
	assert.Equal(t, int64(1), summary.FailureCount)
	assert.Equal(t, []string{"c-1"}, pub.keys)
	assert.Equal(t, []string{"crm.customers"}, pub.topics)

	require.Len(t, runs.entries, 1)
	entry := runs.entries[0]
	assert.Equal(t, runlog.StatusCompleted, entry.Status)
	assert.Equal(t, cfg.CSVFile, entry.Source)
	assert.Equal(t, "crm.customers", entry.Topic)
	assert.Equal(t, int64(1), entry.SuccessCount)
	assert.Equal(t, int64(1), entry.FailureCount)
	assert.Empty(t, entry.Error)
	assert.False(t, entry.FinishedAt.Before(entry.StartedAt))

	_, parseErr := uuid.Parse(entry.RunID)
	assert.NoError(t, parseErr)
	assert.Equal(t, []string{entry.RunID}, pub.runIDs)
}

func TestSink_Ingest_DefaultTopic(t *testing.T) {
	cfg := &config.Config{CSVFile: writeCSV(t, sample)}
	pub := &mockPublisher{}

	_, err := ingest.NewSink(ingest.SinkDependencies{Config: cfg, Publisher: pub}).Ingest(testContext())
	require.NoError(t, err)
	assert.Equal(t, []string{stream.DefaultTopic}, pub.topics)
}

func TestSink_Ingest_FileNotFound(t *testing.T) {
	cfg := &config.Config{CSVFile: "/non/existent/customers.csv", Topic: "t"}
	runs := &mockRuns{}

	_, err := ingest.NewSink(ingest.SinkDependencies{Config: cfg, Publisher: &mockPublisher{}, Runs: runs}).Ingest(testContext())
	require.Error(t, err)
	assert.True(t, errors.Is(err, stream.ErrOpenSource))
	assert.Contains(t, err.Error(), "ingestion of CSV file failed")

	require.Len(t, runs.entries, 1)
	assert.Equal(t, runlog.StatusFailed, runs.entries[0].Status)
	assert.Contains(t, runs.entries[0].Error, "customers.csv")
	assert.Zero(t, runs.entries[0].SuccessCount)
}

func TestSink_Ingest_PublishFailure(t *testing.T) {
	cfg := &config.Config{CSVFile: writeCSV(t, sample), Topic: "t"}
	pub := &mockPublisher{err: errors.New("broker down")}

	summary, err := ingest.NewSink(ingest.SinkDependencies{Config: cfg, Publisher: pub}).Ingest(testContext())
	require.Error(t, err)
	assert.True(t, errors.Is(err, stream.ErrPublish))
	assert.Equal(t, stream.Summary{}, summary)
}

func TestSink_Ingest_RunLogFailureIsNotFatal(t *testing.T) {
	cfg := &config.Config{CSVFile: writeCSV(t, sample), Topic: "t"}
	runs := &mockRuns{err: errors.New("mongo unavailable")}

	summary, err := ingest.NewSink(ingest.SinkDependencies{Config: cfg, Publisher: &mockPublisher{}, Runs: runs}).Ingest(testContext())
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.SuccessCount)
	assert.Len(t, runs.entries, 1)
}

func TestSink_Ingest_CustomOpener(t *testing.T) {
	cfg := &config.Config{CSVFile: "ignored", Topic: "t"}
	opened := ""
	opener := func(ctx context.Context, path string) (stream.RowSource, error) {
		opened = path
		return stream.OpenCSV(ctx, writeCSV(t, sample))
	}

	_, err := ingest.NewSink(ingest.SinkDependencies{Config: cfg, Publisher: &mockPublisher{}, Opener: opener}).Ingest(testContext())
	require.NoError(t, err)
	assert.Equal(t, "ignored", opened)
}
