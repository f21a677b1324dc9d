package storage

import (
	"context"

	"github.com/cockroachdb/errors"

	"customerstream/loader/runlog"
)

const (
	// RunsCollection holds one document per ingestion run.
	RunsCollection = "ingestionRuns"
)

// MongoRepository implements runlog.Repository for MongoDB.
type MongoRepository struct {
	provider CollectionProvider
}

// NewMongoRepository creates a new MongoRepository.
func NewMongoRepository(provider CollectionProvider) *MongoRepository {
	return &MongoRepository{
		provider: provider,
	}
}

// RecordRun inserts entry into the "ingestionRuns" collection.
func (r *MongoRepository) RecordRun(ctx context.Context, entry runlog.Entry) error {
	if entry.RunID == "" {
		return errors.New("run entry has no run id")
	}

	collection := r.provider.Collection(RunsCollection)
	if _, err := collection.InsertOne(ctx, entry); err != nil {
		return errors.Wrapf(err, "failed to insert run %s into %s", entry.RunID, RunsCollection)
	}

	return nil
}
