// File: codec/jsoncodec/codec.go
// Package jsoncodec
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// JSON envelope codec for service messages. Every frame is one envelope:
//
//	{"requestId": 7, "type": "ReadResponse", "body": {...}}
//
// Message types are resolved through the protocol registry.

package jsoncodec

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/protocol"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	_ api.Codec       = (*Codec)(nil)
	_ api.ServerCodec = (*Codec)(nil)
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrWrongKind   = errors.New("message has the wrong kind")
)

// DecodeError reports a frame whose envelope was readable but whose body
// was not. RequestID lets the caller fail the matching request early.
type DecodeError struct {
	RequestID uint32
	Type      string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s for request %d: %v", e.Type, e.RequestID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type envelope struct {
	RequestID uint32              `json:"requestId"`
	Type      string              `json:"type"`
	Body      jsoniter.RawMessage `json:"body"`
}

// Codec implements both directions of the envelope encoding.
type Codec struct{}

// New returns a codec.
func New() *Codec { return &Codec{} }

// EncodeRequest implements api.Codec.
func (c *Codec) EncodeRequest(requestID uint32, req protocol.Request) ([]byte, error) {
	return encode(requestID, req)
}

// DecodeResponse implements api.Codec.
func (c *Codec) DecodeResponse(frame []byte) (uint32, protocol.Response, error) {
	id, msg, err := decode(frame)
	if err != nil {
		return id, nil, err
	}
	resp, ok := msg.(protocol.Response)
	if !ok {
		return id, nil, &DecodeError{RequestID: id, Type: msg.TypeName(), Err: ErrWrongKind}
	}
	return id, resp, nil
}

// DecodeRequest implements api.ServerCodec.
func (c *Codec) DecodeRequest(frame []byte) (uint32, protocol.Request, error) {
	id, msg, err := decode(frame)
	if err != nil {
		return id, nil, err
	}
	req, ok := msg.(protocol.Request)
	if !ok {
		return id, nil, &DecodeError{RequestID: id, Type: msg.TypeName(), Err: ErrWrongKind}
	}
	return id, req, nil
}

// EncodeResponse implements api.ServerCodec.
func (c *Codec) EncodeResponse(requestID uint32, resp protocol.Response) ([]byte, error) {
	return encode(requestID, resp)
}

func encode(requestID uint32, msg protocol.Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("encode: %w", api.ErrInvalidArgument)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.TypeName(), err)
	}
	return json.Marshal(envelope{RequestID: requestID, Type: msg.TypeName(), Body: body})
}

func decode(frame []byte) (uint32, protocol.Message, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return 0, nil, fmt.Errorf("decode envelope: %w", err)
	}
	msg, ok := protocol.NewMessage(env.Type)
	if !ok {
		return env.RequestID, nil, &DecodeError{RequestID: env.RequestID, Type: env.Type, Err: ErrUnknownType}
	}
	if len(env.Body) > 0 {
		if err := json.Unmarshal(env.Body, msg); err != nil {
			return env.RequestID, nil, &DecodeError{RequestID: env.RequestID, Type: env.Type, Err: err}
		}
	}
	return env.RequestID, msg, nil
}
