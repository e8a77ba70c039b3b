// File: protocol/message.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Request/response headers, message contracts and the message type registry
// used by codecs to instantiate decoded payloads.

package protocol

import (
	"sort"
	"sync"
	"time"
)

// AutoHandleThreshold bounds the request handles picked automatically by the
// client. Caller-chosen handles should stay at or below it.
const AutoHandleThreshold uint32 = 100000

// RequestHeader is carried by every service request.
type RequestHeader struct {
	AuthenticationToken string    `json:"authenticationToken,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
	RequestHandle       uint32    `json:"requestHandle"`
	TimeoutHint         uint32    `json:"timeoutHint"` // milliseconds, 0 = client default
}

// ResponseHeader is carried by every service response.
type ResponseHeader struct {
	Timestamp     time.Time  `json:"timestamp"`
	RequestHandle uint32     `json:"requestHandle"`
	ServiceResult StatusCode `json:"serviceResult"`
}

// Message is any encodable service message.
type Message interface {
	TypeName() string
}

// Request is a service request.
type Request interface {
	Message
	RequestHeader() *RequestHeader
}

// Response is a service response.
type Response interface {
	Message
	ResponseHeader() *ResponseHeader
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Message)
)

// RegisterMessage makes a message type known to codecs under its TypeName.
func RegisterMessage(factory func() Message) {
	name := factory().TypeName()
	registryMu.Lock()
	registry[name] = factory
	registryMu.Unlock()
}

// NewMessage instantiates a registered message type by name.
func NewMessage(name string) (Message, bool) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, false
	}
	return f(), true
}

// RegisteredMessages lists registered type names in sorted order.
func RegisteredMessages() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ServiceFault is returned by a server instead of the expected response
// when the service as a whole failed.
type ServiceFault struct {
	Header ResponseHeader `json:"header"`
}

func (*ServiceFault) TypeName() string                  { return "ServiceFault" }
func (f *ServiceFault) ResponseHeader() *ResponseHeader { return &f.Header }

func init() {
	RegisterMessage(func() Message { return &ServiceFault{} })
}
