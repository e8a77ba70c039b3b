// Package fake
// Author: momentics <momentics@gmail.com>
//
// Scripted server peer on top of the fake transport.

package fake

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/protocol"
)

// Handler answers one decoded request. Returning a nil response keeps the
// request unanswered.
type Handler func(requestID uint32, req protocol.Request) protocol.Response

// Received is a request observed by the server.
type Received struct {
	ID      uint32
	Request protocol.Request
}

// Server decodes whatever the client sent and answers through handlers
// registered per request type. Nothing happens until Pump is called, so
// tests decide exactly when responses become visible to the client.
type Server struct {
	transport *Transport
	codec     api.ServerCodec

	mu       sync.Mutex
	handlers map[string]Handler
	received []Received
}

// NewServer attaches a server to a fresh fake transport.
func NewServer(codec api.ServerCodec) *Server {
	return &Server{
		transport: NewTransport(),
		codec:     codec,
		handlers:  make(map[string]Handler),
	}
}

// Transport is the client side of the link.
func (s *Server) Transport() *Transport { return s.transport }

// Handle registers h for requests of the given type name.
func (s *Server) Handle(typeName string, h Handler) {
	s.mu.Lock()
	s.handlers[typeName] = h
	s.mu.Unlock()
}

// Pump decodes every frame sent since the last call and queues the
// handler responses. It returns the number of requests processed.
func (s *Server) Pump() (int, error) {
	frames := s.transport.TakeSentData()
	for _, frame := range frames {
		id, req, err := s.codec.DecodeRequest(frame)
		if err != nil {
			return 0, fmt.Errorf("fake server: %w", err)
		}
		s.mu.Lock()
		s.received = append(s.received, Received{ID: id, Request: req})
		h := s.handlers[req.TypeName()]
		s.mu.Unlock()
		if h == nil {
			continue
		}
		if resp := h(id, req); resp != nil {
			if err := s.Respond(id, resp); err != nil {
				return 0, err
			}
		}
	}
	return len(frames), nil
}

// Respond queues resp for request id, echoing nothing else. It may be used
// to answer out of order, twice, or for ids the client never sent.
func (s *Server) Respond(id uint32, resp protocol.Response) error {
	frame, err := s.codec.EncodeResponse(id, resp)
	if err != nil {
		return fmt.Errorf("fake server: %w", err)
	}
	s.transport.AddRecvData(frame)
	return nil
}

// Received returns every request decoded so far.
func (s *Server) Received() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Received, len(s.received))
	copy(out, s.received)
	return out
}

// Last returns the most recent request of the given type.
func (s *Server) Last(typeName string) (Received, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.received) - 1; i >= 0; i-- {
		if s.received[i].Request.TypeName() == typeName {
			return s.received[i], true
		}
	}
	return Received{}, false
}

// Echo answers with a response of the matching kind built by mk, copying
// the request handle into the response header.
func Echo[Resp protocol.Response](mk func() Resp) Handler {
	return func(_ uint32, req protocol.Request) protocol.Response {
		resp := mk()
		resp.ResponseHeader().RequestHandle = req.RequestHeader().RequestHandle
		return resp
	}
}
