package publish

import (
	"context"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// kgoLogger routes franz-go client logs into slog.
type kgoLogger struct {
	logger *slog.Logger
	level  kgo.LogLevel
}

func newKgoLogger(logger *slog.Logger) *kgoLogger {
	ctx := context.Background()
	level := kgo.LogLevelNone
	switch {
	case logger.Enabled(ctx, slog.LevelDebug):
		level = kgo.LogLevelDebug
	case logger.Enabled(ctx, slog.LevelInfo):
		level = kgo.LogLevelInfo
	case logger.Enabled(ctx, slog.LevelWarn):
		level = kgo.LogLevelWarn
	case logger.Enabled(ctx, slog.LevelError):
		level = kgo.LogLevelError
	}
	return &kgoLogger{logger: logger.With("component", "kgo"), level: level}
}

func (l *kgoLogger) Level() kgo.LogLevel {
	return l.level
}

func (l *kgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	l.logger.Log(context.Background(), toSlogLevel(level), msg, keyvals...)
}

func toSlogLevel(level kgo.LogLevel) slog.Level {
	switch level {
	case kgo.LogLevelError:
		return slog.LevelError
	case kgo.LogLevelWarn:
		return slog.LevelWarn
	case kgo.LogLevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
