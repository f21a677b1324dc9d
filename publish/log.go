package publish

import (
	"context"

	"github.com/cockroachdb/errors"

	"customerstream/loader/appcontext"
	"customerstream/loader/customer"
)

// Log is a dry-run publisher: it encodes each record and logs it instead of sending it.
type Log struct {
	codec     Codec
	published int64
}

// NewLog creates a dry-run publisher using codec (JSON when nil).
func NewLog(codec Codec) *Log {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Log{codec: codec}
}

// Publish logs the record at debug level.
func (l *Log) Publish(ctx context.Context, topic, key string, record customer.Record) error {
	value, err := l.codec.Encode(record.Payload())
	if err != nil {
		return errors.Wrapf(err, "failed to encode record %s", key)
	}
	l.published++

	appcontext.LoggerFromContext(ctx).DebugContext(ctx, "Dry-run publish",
		"topic", topic,
		"key", key,
		"bytes", len(value),
	)
	return nil
}

// Published is the number of records seen so far.
func (l *Log) Published() int64 {
	return l.published
}
