// File: api/codec.go
// Author: momentics <momentics@gmail.com>
//
// Wire codec contracts. The binary OPC UA encoding lives outside this module;
// any Codec that frames a request id together with a message fits.

package api

import "github.com/momentics/hioload-ua/protocol"

// Codec is the client side of a wire encoding.
type Codec interface {
	EncodeRequest(requestID uint32, req protocol.Request) ([]byte, error)
	DecodeResponse(frame []byte) (requestID uint32, resp protocol.Response, err error)
}

// ServerCodec is the mirror image used by servers and test peers.
type ServerCodec interface {
	DecodeRequest(frame []byte) (requestID uint32, req protocol.Request, err error)
	EncodeResponse(requestID uint32, resp protocol.Response) ([]byte, error)
}
