// File: client/cancel.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Group cancellation through the Cancel service. The client only asks; the
// server decides which requests it abandons and answers each of them on
// its own, or lets them time out.

package client

import (
	"fmt"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/protocol"
)

// CancelCallback receives the number of requests the server cancelled.
// status is Good on success and the failure status otherwise, with count 0.
type CancelCallback func(c *Client, cancelCount uint32, status protocol.StatusCode)

// CancelByHandle asks the server to cancel every request dispatched with
// request handle h. It returns the request id of the Cancel request.
func (c *Client) CancelByHandle(h uint32, cb CancelCallback, opts ...DispatchOption) (uint32, error) {
	req := &protocol.CancelRequest{RequestHandle: h}
	id, err := c.dispatch(req, api.ShapeOf[*protocol.CancelResponse](), func(_ uint32, out api.Outcome) {
		if cb == nil {
			return
		}
		if !out.OK() {
			cb(c, 0, out.Status)
			return
		}
		cb(c, out.Response.(*protocol.CancelResponse).CancelCount, protocol.StatusGood)
	}, opts)
	if err != nil {
		return 0, fmt.Errorf("cancel handle %d: %w", h, err)
	}
	c.metrics.ObserveCancel()
	c.log.WithField("handle", h).Debug("cancel requested")
	return id, nil
}

// CancelByID cancels the group the pending request id belongs to.
func (c *Client) CancelByID(requestID uint32, cb CancelCallback, opts ...DispatchOption) (uint32, error) {
	h, ok := c.table.HandleOf(requestID)
	if !ok {
		return 0, fmt.Errorf("cancel request %d: %w", requestID, api.ErrUnknownRequestID)
	}
	return c.CancelByHandle(h, cb, opts...)
}
