package appcontext_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customerstream/loader/appcontext"
)

func TestLoggerFromContext_Default(t *testing.T) {
	assert.Equal(t, slog.Default(), appcontext.LoggerFromContext(context.Background()))
}

func TestWithRunID_TagsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := appcontext.SetupLogger(&buf, "info", "json")
	ctx := appcontext.WithLogger(context.Background(), logger)

	ctx = appcontext.WithRunID(ctx, "run-42")
	require.Equal(t, "run-42", appcontext.RunIDFromContext(ctx))

	appcontext.LoggerFromContext(ctx).InfoContext(ctx, "hello")
	assert.Contains(t, buf.String(), `"run_id":"run-42"`)
}

func TestRunIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, appcontext.RunIDFromContext(context.Background()))
}

func TestSetupLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := appcontext.SetupLogger(&buf, "warn", "text")

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, appcontext.ParseLevel(in), in)
	}
}
