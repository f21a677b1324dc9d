// Package publish delivers customer records to a message broker.
package publish

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"

	"customerstream/loader/customer"
)

// Value format names accepted by CodecFor.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

var errUnknownFormat = errors.New("unknown value format")

// Codec serializes a record payload into a message value.
type Codec interface {
	ContentType() string
	Encode(p customer.Payload) ([]byte, error)
}

// JSONCodec encodes payloads as JSON objects.
type JSONCodec struct{}

func (JSONCodec) ContentType() string { return "application/json" }

func (JSONCodec) Encode(p customer.Payload) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "json encode")
	}
	return b, nil
}

// MsgpackCodec encodes payloads as MessagePack maps.
type MsgpackCodec struct{}

func (MsgpackCodec) ContentType() string { return "application/msgpack" }

func (MsgpackCodec) Encode(p customer.Payload) ([]byte, error) {
	b, err := msgpack.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "msgpack encode")
	}
	return b, nil
}

// CodecFor returns the codec for a format name. An empty name selects JSON.
func CodecFor(format string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return JSONCodec{}, nil
	case FormatMsgpack:
		return MsgpackCodec{}, nil
	default:
		return nil, errors.Wrapf(errUnknownFormat, "%q", format)
	}
}
