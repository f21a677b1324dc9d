package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/vmihailenco/msgpack/v5"

	"customerstream/loader/appcontext"
	"customerstream/loader/customer"
)

// fakeProducer captures records and lets the test decide when promises fire.
type fakeProducer struct {
	records  []*kgo.Record
	promises []func(*kgo.Record, error)
	flushErr error
	pingErr  error
	closed   bool
}

func (f *fakeProducer) Produce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.records = append(f.records, r)
	f.promises = append(f.promises, promise)
}

func (f *fakeProducer) Flush(context.Context) error { return f.flushErr }

func (f *fakeProducer) Ping(context.Context) error { return f.pingErr }

func (f *fakeProducer) Close() { f.closed = true }

func (f *fakeProducer) complete(i int, err error) {
	f.promises[i](f.records[i], err)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecord(t *testing.T, id string) customer.Record {
	t.Helper()
	rec, rej := customer.Validate(customer.Row{
		customer.ColumnID:            id,
		customer.ColumnFirstName:     "Ada",
		customer.ColumnLastName:      "Lovelace",
		customer.ColumnEmail:         "ada@example.com",
		customer.ColumnSignupDate:    "2024-02-29",
		customer.ColumnLoyaltyPoints: "12",
	})
	require.Nil(t, rej)
	return rec
}

func TestCodecFor(t *testing.T) {
	c, err := CodecFor("")
	require.NoError(t, err)
	assert.IsType(t, JSONCodec{}, c)

	c, err = CodecFor(" MsgPack ")
	require.NoError(t, err)
	assert.IsType(t, MsgpackCodec{}, c)

	_, err = CodecFor("avro")
	assert.True(t, errors.Is(err, errUnknownFormat))
}

func TestCodecs_EncodePayload(t *testing.T) {
	payload := testRecord(t, "c-1").Payload()

	raw, err := JSONCodec{}.Encode(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c-1","firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","signupDate":"2024-02-29","loyaltyPoints":12}`, string(raw))

	raw, err = MsgpackCodec{}.Encode(payload)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, msgpack.Unmarshal(raw, &decoded))
	assert.Equal(t, "c-1", decoded["id"])
	assert.Equal(t, "2024-02-29", decoded["signupDate"])
}

func TestKafka_PublishQueuesKeyedRecord(t *testing.T) {
	fake := &fakeProducer{}
	k := newKafka(fake, nil, quietLogger())
	ctx := appcontext.WithRunID(context.Background(), "run-1")

	require.NoError(t, k.Publish(ctx, "customers", "c-1", testRecord(t, "c-1")))

	require.Len(t, fake.records, 1)
	r := fake.records[0]
	assert.Equal(t, "customers", r.Topic)
	assert.Equal(t, []byte("c-1"), r.Key)

	var payload customer.Payload
	require.NoError(t, json.Unmarshal(r.Value, &payload))
	assert.Equal(t, "c-1", payload.ID)

	assert.Equal(t, []kgo.RecordHeader{
		{Key: headerContentType, Value: []byte("application/json")},
		{Key: headerRunID, Value: []byte("run-1")},
	}, r.Headers)
}

func TestKafka_DeliveryFailureSurfacesOnNextPublish(t *testing.T) {
	fake := &fakeProducer{}
	k := newKafka(fake, JSONCodec{}, quietLogger())
	ctx := context.Background()

	require.NoError(t, k.Publish(ctx, "t", "a", testRecord(t, "a")))
	require.NoError(t, k.Publish(ctx, "t", "b", testRecord(t, "b")))

	fake.complete(0, nil)
	fake.complete(1, errors.New("NOT_LEADER_FOR_PARTITION"))
	assert.Equal(t, int64(1), k.Acked())

	err := k.Publish(ctx, "t", "c", testRecord(t, "c"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDelivery))
	assert.Contains(t, err.Error(), "record b")
	assert.Len(t, fake.records, 2, "nothing is queued after a failure")

	assert.True(t, errors.Is(k.Flush(ctx), ErrDelivery))
}

func TestKafka_Flush(t *testing.T) {
	fake := &fakeProducer{}
	k := newKafka(fake, JSONCodec{}, quietLogger())
	assert.NoError(t, k.Flush(context.Background()))

	fake.flushErr = context.DeadlineExceeded
	assert.ErrorIs(t, k.Flush(context.Background()), context.DeadlineExceeded)
}

func TestKafka_PingAndClose(t *testing.T) {
	fake := &fakeProducer{pingErr: errors.New("no brokers")}
	k := newKafka(fake, JSONCodec{}, quietLogger())

	err := k.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping kafka")

	k.Close()
	assert.True(t, fake.closed)
}

func TestNewKafka_RequiresBrokers(t *testing.T) {
	_, err := NewKafka(KafkaConfig{})
	assert.Error(t, err)
}

func TestNewKafka_DoesNotDial(t *testing.T) {
	k, err := NewKafka(KafkaConfig{Brokers: []string{"127.0.0.1:1"}, ClientID: "test", Logger: quietLogger()})
	require.NoError(t, err)
	k.Close()
}

func TestKgoLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	l := newKgoLogger(logger)
	assert.Equal(t, kgo.LogLevelWarn, l.Level())

	l.Log(kgo.LogLevelInfo, "metadata refresh")
	l.Log(kgo.LogLevelError, "broker down", "broker", "b-1")

	assert.NotContains(t, buf.String(), "metadata refresh")
	assert.Contains(t, buf.String(), "broker down")
	assert.Contains(t, buf.String(), "component=kgo")
}

func TestLog_DryRun(t *testing.T) {
	l := NewLog(nil)
	require.NoError(t, l.Publish(context.Background(), "t", "a", testRecord(t, "a")))
	require.NoError(t, l.Publish(context.Background(), "t", "b", testRecord(t, "b")))
	assert.Equal(t, int64(2), l.Published())
}
