// File: client/drain.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"errors"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/internal/concurrency"
	"github.com/momentics/hioload-ua/protocol"
)

// DrainAll completes every pending request with a shutting-down outcome
// and refuses further dispatches. A second call returns api.ErrClientShutDown.
func (c *Client) DrainAll() error {
	c.lifecycle.Lock()
	if c.drained {
		c.lifecycle.Unlock()
		return api.ErrClientShutDown
	}
	c.drained = true
	recs := c.table.RemoveAll()
	c.lifecycle.Unlock()

	batch := concurrency.NewBatch[completion]()
	for _, rec := range recs {
		batch.Push(completion{rec: rec, out: api.ShuttingDown()})
	}
	c.fire(batch)
	c.log.WithField("drained", len(recs)).Info("pending requests drained")
	return nil
}

// Close drains pending requests and closes the transport. Safe to call twice.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.DrainAll(); err != nil && !errors.Is(err, api.ErrClientShutDown) {
		return err
	}
	c.setState(api.ChannelClosed, protocol.StatusBadConnectionClosed)
	return c.transport.Close()
}
