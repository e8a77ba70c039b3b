// File: client/dispatch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/internal/correlation"
	"github.com/momentics/hioload-ua/protocol"
)

// Dispatch registers req, encodes it and hands it to the transport. It
// returns the request id once the transport accepted the frame; cb then
// receives exactly one outcome from a later RunIterate or DrainAll.
//
// A local failure returns an error and leaves nothing behind: cb is never
// called for it. shape nil accepts any response.
func (c *Client) Dispatch(req protocol.Request, shape api.ResponseShape, cb Callback, opts ...DispatchOption) (uint32, error) {
	var inner correlation.Callback
	if cb != nil {
		inner = func(id uint32, out api.Outcome) { cb(c, id, out) }
	}
	return c.dispatch(req, shape, inner, opts)
}

func (c *Client) dispatch(req protocol.Request, shape api.ResponseShape, cb correlation.Callback, opts []DispatchOption) (uint32, error) {
	if req == nil {
		return 0, fmt.Errorf("dispatch: nil request: %w", api.ErrInvalidArgument)
	}
	if shape == nil {
		shape = api.AnyResponse
	}
	var o dispatchOptions
	for _, opt := range opts {
		opt(&o)
	}

	c.lifecycle.RLock()
	drained := c.drained
	c.lifecycle.RUnlock()
	if drained {
		return 0, fmt.Errorf("dispatch %s: %w", req.TypeName(), api.ErrClientShutDown)
	}
	if st := c.ConnectStatus(); st.IsBad() {
		return 0, fmt.Errorf("dispatch %s: %w: %w", req.TypeName(), api.ErrTransportUnavailable, st)
	}

	hdr := req.RequestHeader()
	timeout := c.cfg.Timeout
	switch {
	case o.timeout > 0:
		timeout = o.timeout
		hdr.TimeoutHint = millis(timeout)
	case hdr.TimeoutHint > 0:
		timeout = time.Duration(hdr.TimeoutHint) * time.Millisecond
	default:
		hdr.TimeoutHint = millis(timeout)
	}

	handle := o.handle
	if handle == 0 {
		handle = hdr.RequestHandle
	}
	if handle == 0 {
		handle = c.handles.Next()
	}
	hdr.RequestHandle = handle

	now := c.clock.Now()
	hdr.Timestamp = now
	rec := correlation.NewRecord(req.TypeName(), handle, shape, now, now.Add(timeout), cb)

	c.lifecycle.RLock()
	if c.drained {
		c.lifecycle.RUnlock()
		return 0, fmt.Errorf("dispatch %s: %w", req.TypeName(), api.ErrClientShutDown)
	}
	id, err := c.table.Register(rec)
	c.lifecycle.RUnlock()
	if err != nil {
		return 0, fmt.Errorf("dispatch %s: %w", req.TypeName(), err)
	}

	log := c.log.WithFields(logrus.Fields{
		"request_id": id,
		"handle":     handle,
		"service":    rec.Service,
	})

	frame, err := c.codec.EncodeRequest(id, req)
	if err == nil {
		err = c.transport.Send([][]byte{frame})
	}
	if err != nil {
		if _, ok := c.table.Remove(id, api.RequestCancelled); !ok {
			// Settled by a concurrent sweep while sending; its outcome stands.
			c.metrics.ObserveDispatch()
			return id, nil
		}
		log.WithError(err).Warn("request not sent")
		return 0, fmt.Errorf("dispatch %s: %w: %w", req.TypeName(), api.ErrTransportUnavailable, err)
	}

	c.metrics.ObserveDispatch()
	log.WithField("timeout", timeout).Debug("request dispatched")
	return id, nil
}

func millis(d time.Duration) uint32 {
	ms := d / time.Millisecond
	if ms <= 0 {
		return 0
	}
	if ms > 1<<32-1 {
		return 1<<32 - 1
	}
	return uint32(ms)
}
