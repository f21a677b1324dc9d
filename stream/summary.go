package stream

import (
	"log/slog"
	"time"
)

// Summary reports the outcome of one completed ingestion run.
type Summary struct {
	SuccessCount int64
	FailureCount int64
	Elapsed      time.Duration
}

// ElapsedMillis returns the run duration in whole milliseconds.
func (s Summary) ElapsedMillis() int64 {
	return s.Elapsed.Milliseconds()
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("success", s.SuccessCount),
		slog.Int64("failed", s.FailureCount),
		slog.Int64("elapsed_ms", s.ElapsedMillis()),
	)
}

// counters accumulate a run in progress; only the ingest loop touches them.
type counters struct {
	success int64
	failure int64
}

func (c *counters) addSuccess() { c.success++ }

func (c *counters) addFailure() { c.failure++ }

func (c *counters) summary(elapsed time.Duration) Summary {
	return Summary{
		SuccessCount: c.success,
		FailureCount: c.failure,
		Elapsed:      elapsed,
	}
}
