package stream

import (
	"context"

	"customerstream/loader/customer"
)

// Publisher hands a validated record to the broker under the given key.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, record customer.Record) error
}

// PublishFunc adapts an ordinary function to a Publisher.
type PublishFunc func(ctx context.Context, topic, key string, record customer.Record) error

// Publish calls f.
func (f PublishFunc) Publish(ctx context.Context, topic, key string, record customer.Record) error {
	return f(ctx, topic, key, record)
}

// Flusher is implemented by publishers that buffer records. Flush is called once the
// last row has been published and must report any delivery failure.
type Flusher interface {
	Flush(ctx context.Context) error
}
