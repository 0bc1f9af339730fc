package proto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec serialises messages for one client connection.
type Codec interface {
	Name() string
	// Binary reports whether frames must be sent as binary websocket messages.
	Binary() bool
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// CodecFor resolves a codec by name. An empty name selects JSON.
func CodecFor(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CodecJSON:
		return JSONCodec{}, nil
	case CodecMsgpack:
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported codec %q", name)
	}
}

type JSONCodec struct{}

func (JSONCodec) Name() string                       { return CodecJSON }
func (JSONCodec) Binary() bool                       { return false }
func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// MsgpackCodec encodes with msgpack, reusing the json struct tags so both
// codecs produce the same field names.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return CodecMsgpack }
func (MsgpackCodec) Binary() bool { return true }

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// Decode reads a client message with the given codec.
func Decode(codec Codec, payload []byte) (ClientMessage, error) {
	if codec == nil || codec.Name() == CodecJSON {
		return DecodeClientMessage(payload)
	}
	var msg ClientMessage
	if err := codec.Unmarshal(payload, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return msg, msg.validate()
}
