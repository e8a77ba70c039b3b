// File: protocol/services.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Attribute, View and Method service sets.

package protocol

import "time"

// AttributeID selects a node attribute.
type AttributeID uint32

const (
	AttributeNodeID      AttributeID = 1
	AttributeNodeClass   AttributeID = 2
	AttributeBrowseName  AttributeID = 3
	AttributeDisplayName AttributeID = 4
	AttributeDescription AttributeID = 5
	AttributeValue       AttributeID = 13
	AttributeDataType    AttributeID = 14
	AttributeAccessLevel AttributeID = 17
)

// DataValue is a value with status and timestamps.
type DataValue struct {
	Value           any        `json:"value,omitempty"`
	Status          StatusCode `json:"status"`
	SourceTimestamp time.Time  `json:"sourceTimestamp,omitempty"`
	ServerTimestamp time.Time  `json:"serverTimestamp,omitempty"`
}

// ReadValueID addresses one attribute of one node.
type ReadValueID struct {
	NodeID      string      `json:"nodeId"`
	AttributeID AttributeID `json:"attributeId"`
	IndexRange  string      `json:"indexRange,omitempty"`
}

type ReadRequest struct {
	Header      RequestHeader `json:"header"`
	MaxAge      float64       `json:"maxAge"`
	NodesToRead []ReadValueID `json:"nodesToRead"`
}

func (*ReadRequest) TypeName() string                 { return "ReadRequest" }
func (r *ReadRequest) RequestHeader() *RequestHeader { return &r.Header }

type ReadResponse struct {
	Header  ResponseHeader `json:"header"`
	Results []DataValue    `json:"results"`
}

func (*ReadResponse) TypeName() string                  { return "ReadResponse" }
func (r *ReadResponse) ResponseHeader() *ResponseHeader { return &r.Header }

// WriteValue assigns a value to one attribute of one node.
type WriteValue struct {
	NodeID      string      `json:"nodeId"`
	AttributeID AttributeID `json:"attributeId"`
	IndexRange  string      `json:"indexRange,omitempty"`
	Value       DataValue   `json:"value"`
}

type WriteRequest struct {
	Header       RequestHeader `json:"header"`
	NodesToWrite []WriteValue  `json:"nodesToWrite"`
}

func (*WriteRequest) TypeName() string                 { return "WriteRequest" }
func (r *WriteRequest) RequestHeader() *RequestHeader { return &r.Header }

type WriteResponse struct {
	Header  ResponseHeader `json:"header"`
	Results []StatusCode   `json:"results"`
}

func (*WriteResponse) TypeName() string                  { return "WriteResponse" }
func (r *WriteResponse) ResponseHeader() *ResponseHeader { return &r.Header }

// BrowseDirection selects forward, inverse or both reference directions.
type BrowseDirection uint32

const (
	BrowseForward BrowseDirection = iota
	BrowseInverse
	BrowseBoth
)

type BrowseDescription struct {
	NodeID          string          `json:"nodeId"`
	Direction       BrowseDirection `json:"direction"`
	ReferenceTypeID string          `json:"referenceTypeId,omitempty"`
	IncludeSubtypes bool            `json:"includeSubtypes"`
}

type ReferenceDescription struct {
	NodeID      string `json:"nodeId"`
	BrowseName  string `json:"browseName"`
	DisplayName string `json:"displayName"`
	NodeClass   uint32 `json:"nodeClass"`
	IsForward   bool   `json:"isForward"`
}

type BrowseResult struct {
	Status            StatusCode             `json:"status"`
	ContinuationPoint []byte                 `json:"continuationPoint,omitempty"`
	References        []ReferenceDescription `json:"references"`
}

type BrowseRequest struct {
	Header                        RequestHeader       `json:"header"`
	RequestedMaxReferencesPerNode uint32              `json:"requestedMaxReferencesPerNode"`
	NodesToBrowse                 []BrowseDescription `json:"nodesToBrowse"`
}

func (*BrowseRequest) TypeName() string                 { return "BrowseRequest" }
func (r *BrowseRequest) RequestHeader() *RequestHeader { return &r.Header }

type BrowseResponse struct {
	Header  ResponseHeader `json:"header"`
	Results []BrowseResult `json:"results"`
}

func (*BrowseResponse) TypeName() string                  { return "BrowseResponse" }
func (r *BrowseResponse) ResponseHeader() *ResponseHeader { return &r.Header }

type BrowseNextRequest struct {
	Header                    RequestHeader `json:"header"`
	ReleaseContinuationPoints bool          `json:"releaseContinuationPoints"`
	ContinuationPoints        [][]byte      `json:"continuationPoints"`
}

func (*BrowseNextRequest) TypeName() string                 { return "BrowseNextRequest" }
func (r *BrowseNextRequest) RequestHeader() *RequestHeader { return &r.Header }

type BrowseNextResponse struct {
	Header  ResponseHeader `json:"header"`
	Results []BrowseResult `json:"results"`
}

func (*BrowseNextResponse) TypeName() string                  { return "BrowseNextResponse" }
func (r *BrowseNextResponse) ResponseHeader() *ResponseHeader { return &r.Header }

type CallMethodRequest struct {
	ObjectID       string `json:"objectId"`
	MethodID       string `json:"methodId"`
	InputArguments []any  `json:"inputArguments,omitempty"`
}

type CallMethodResult struct {
	Status          StatusCode   `json:"status"`
	InputArgResults []StatusCode `json:"inputArgumentResults,omitempty"`
	OutputArguments []any        `json:"outputArguments,omitempty"`
}

type CallRequest struct {
	Header        RequestHeader       `json:"header"`
	MethodsToCall []CallMethodRequest `json:"methodsToCall"`
}

func (*CallRequest) TypeName() string                 { return "CallRequest" }
func (r *CallRequest) RequestHeader() *RequestHeader { return &r.Header }

type CallResponse struct {
	Header  ResponseHeader     `json:"header"`
	Results []CallMethodResult `json:"results"`
}

func (*CallResponse) TypeName() string                  { return "CallResponse" }
func (r *CallResponse) ResponseHeader() *ResponseHeader { return &r.Header }

func init() {
	RegisterMessage(func() Message { return &ReadRequest{} })
	RegisterMessage(func() Message { return &ReadResponse{} })
	RegisterMessage(func() Message { return &WriteRequest{} })
	RegisterMessage(func() Message { return &WriteResponse{} })
	RegisterMessage(func() Message { return &BrowseRequest{} })
	RegisterMessage(func() Message { return &BrowseResponse{} })
	RegisterMessage(func() Message { return &BrowseNextRequest{} })
	RegisterMessage(func() Message { return &BrowseNextResponse{} })
	RegisterMessage(func() Message { return &CallRequest{} })
	RegisterMessage(func() Message { return &CallResponse{} })
}
