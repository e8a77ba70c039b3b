// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Defines the framed transport abstraction the asynchronous service layer
// sends encoded requests through and pulls encoded responses from.

package api

// TransportFeatures describes the capabilities of a Transport implementation.
type TransportFeatures struct {
	Batch  bool     // Send accepts several frames per call
	Framed bool     // each Recv element is exactly one message
	Secure bool     // the link itself is encrypted (TLS)
	Name   string   // human-readable transport identifier
	OS     []string // supported platforms, empty = any
}

// Transport moves framed binary messages.
//
// Send may be called concurrently. Recv must not block: it returns whatever
// complete frames are available, possibly none, and is only called from the
// single processing step.
type Transport interface {
	Send(frames [][]byte) error
	Recv() ([][]byte, error)
	Close() error
	Features() TransportFeatures
}
