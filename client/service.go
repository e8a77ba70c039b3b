// File: client/service.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Typed asynchronous service calls built on Dispatch.

package client

import (
	"fmt"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/protocol"
)

// TypedCallback receives the outcome of a typed call. resp is set whenever
// the server answered with a Resp, also for a bad ServiceResult.
type TypedCallback[Resp protocol.Response] func(c *Client, requestID uint32, resp Resp, out api.Outcome)

// Call dispatches req expecting a response of type Resp.
func Call[Req protocol.Request, Resp protocol.Response](c *Client, req Req, cb TypedCallback[Resp], opts ...DispatchOption) (uint32, error) {
	return c.Dispatch(req, api.ShapeOf[Resp](), func(c *Client, id uint32, out api.Outcome) {
		if cb == nil {
			return
		}
		var resp Resp
		if r, ok := out.Response.(Resp); ok {
			resp = r
		}
		cb(c, id, resp, out)
	}, opts...)
}

// ReadAsync dispatches a Read request.
func (c *Client) ReadAsync(req *protocol.ReadRequest, cb TypedCallback[*protocol.ReadResponse], opts ...DispatchOption) (uint32, error) {
	return Call[*protocol.ReadRequest, *protocol.ReadResponse](c, req, cb, opts...)
}

// WriteAsync dispatches a Write request.
func (c *Client) WriteAsync(req *protocol.WriteRequest, cb TypedCallback[*protocol.WriteResponse], opts ...DispatchOption) (uint32, error) {
	return Call[*protocol.WriteRequest, *protocol.WriteResponse](c, req, cb, opts...)
}

// BrowseAsync dispatches a Browse request.
func (c *Client) BrowseAsync(req *protocol.BrowseRequest, cb TypedCallback[*protocol.BrowseResponse], opts ...DispatchOption) (uint32, error) {
	return Call[*protocol.BrowseRequest, *protocol.BrowseResponse](c, req, cb, opts...)
}

// BrowseNextAsync dispatches a BrowseNext request.
func (c *Client) BrowseNextAsync(req *protocol.BrowseNextRequest, cb TypedCallback[*protocol.BrowseNextResponse], opts ...DispatchOption) (uint32, error) {
	return Call[*protocol.BrowseNextRequest, *protocol.BrowseNextResponse](c, req, cb, opts...)
}

// CallMethodAsync dispatches a Call request.
func (c *Client) CallMethodAsync(req *protocol.CallRequest, cb TypedCallback[*protocol.CallResponse], opts ...DispatchOption) (uint32, error) {
	return Call[*protocol.CallRequest, *protocol.CallResponse](c, req, cb, opts...)
}

// AttributeCallback receives a single attribute value.
type AttributeCallback func(c *Client, requestID uint32, value protocol.DataValue, out api.Outcome)

// ReadAttributeAsync reads one attribute of one node. A bad per-value
// status is reported as a server failure carrying that status.
func (c *Client) ReadAttributeAsync(nodeID string, attr protocol.AttributeID, cb AttributeCallback, opts ...DispatchOption) (uint32, error) {
	req := &protocol.ReadRequest{NodesToRead: []protocol.ReadValueID{{NodeID: nodeID, AttributeID: attr}}}
	return c.ReadAsync(req, func(c *Client, id uint32, resp *protocol.ReadResponse, out api.Outcome) {
		if cb == nil {
			return
		}
		var dv protocol.DataValue
		if out.OK() {
			out, dv = singleResult(out, resp.Results, func(v protocol.DataValue) protocol.StatusCode { return v.Status })
		}
		cb(c, id, dv, out)
	}, opts...)
}

// ReadValueAsync reads the Value attribute of one node.
func (c *Client) ReadValueAsync(nodeID string, cb AttributeCallback, opts ...DispatchOption) (uint32, error) {
	return c.ReadAttributeAsync(nodeID, protocol.AttributeValue, cb, opts...)
}

// WriteAttributeAsync writes one attribute of one node.
func (c *Client) WriteAttributeAsync(nodeID string, attr protocol.AttributeID, value any, cb Callback, opts ...DispatchOption) (uint32, error) {
	req := &protocol.WriteRequest{NodesToWrite: []protocol.WriteValue{{
		NodeID:      nodeID,
		AttributeID: attr,
		Value:       protocol.DataValue{Value: value},
	}}}
	return c.WriteAsync(req, func(c *Client, id uint32, resp *protocol.WriteResponse, out api.Outcome) {
		if cb == nil {
			return
		}
		if out.OK() {
			out, _ = singleResult(out, resp.Results, func(s protocol.StatusCode) protocol.StatusCode { return s })
		}
		cb(c, id, out)
	}, opts...)
}

// singleResult checks that a single-operation response carries exactly one
// good result.
func singleResult[T any](out api.Outcome, results []T, status func(T) protocol.StatusCode) (api.Outcome, T) {
	var zero T
	if len(results) != 1 {
		return api.Outcome{
			Kind:     api.OutcomeServerFailure,
			Status:   protocol.StatusBadUnexpectedError,
			Response: out.Response,
			Message:  fmt.Sprintf("expected 1 result, got %d", len(results)),
		}, zero
	}
	if st := status(results[0]); st.IsBad() {
		return api.Outcome{
			Kind:     api.OutcomeServerFailure,
			Status:   st,
			Response: out.Response,
			Message:  "operation failed",
		}, results[0]
	}
	return out, results[0]
}
