// Package runlog describes the audit record kept for each ingestion run.
package runlog

import (
	"context"
	"time"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Entry is one ingestion run as stored in the audit trail.
type Entry struct {
	RunID        string    `bson:"run_id"`
	Source       string    `bson:"source"`
	Topic        string    `bson:"topic"`
	Status       string    `bson:"status"`
	SuccessCount int64     `bson:"success_count"`
	FailureCount int64     `bson:"failure_count"`
	ElapsedMS    int64     `bson:"elapsed_ms"`
	Error        string    `bson:"error,omitempty"`
	StartedAt    time.Time `bson:"started_at"`
	FinishedAt   time.Time `bson:"finished_at"`
}

// Repository stores run entries.
type Repository interface {
	RecordRun(ctx context.Context, entry Entry) error
}
