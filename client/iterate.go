// File: client/iterate.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The processing step: response demultiplexing, timeout sweep and
// automatic renewal. Within one step the received frames are handled in
// arrival order before timeouts are swept, so a response that arrived in
// time wins over its own deadline passing during the same step.

package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/internal/concurrency"
	"github.com/momentics/hioload-ua/internal/correlation"
	"github.com/momentics/hioload-ua/protocol"
)

type completion struct {
	rec *correlation.Record
	out api.Outcome
}

// RunIterate performs one processing step. It never blocks on the network.
// Calling it from a callback or from a second goroutine while a step runs
// returns api.ErrIterateReentered.
func (c *Client) RunIterate(ctx context.Context) error {
	if !c.iterating.CompareAndSwap(false, true) {
		return api.ErrIterateReentered
	}
	defer c.iterating.Store(false)

	if err := ctx.Err(); err != nil {
		return err
	}
	c.lifecycle.RLock()
	drained := c.drained
	c.lifecycle.RUnlock()
	if drained {
		return api.ErrClientShutDown
	}

	batch := concurrency.NewBatch[completion]()
	frames, recvErr := c.transport.Recv()
	for _, frame := range frames {
		c.demux(frame, batch)
	}
	c.sweepTimeouts(c.clock.Now(), batch)
	c.fire(batch)

	if recvErr != nil {
		c.log.WithError(recvErr).Warn("transport receive failed")
		c.setState(api.ChannelFailed, protocol.StatusBadConnectionClosed)
		return fmt.Errorf("run iterate: %w: %w", api.ErrTransportUnavailable, recvErr)
	}

	if c.cfg.AutoRenew {
		if _, err := c.RenewSecureChannel(); err != nil &&
			!errors.Is(err, api.ErrConnectionFailed) && !errors.Is(err, api.ErrClientShutDown) {
			c.log.WithError(err).Warn("automatic renewal failed")
		}
	}
	return nil
}

// Run calls RunIterate every interval until ctx is done or the client is
// shut down. Iteration errors other than shutdown are logged.
func (c *Client) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		err := c.RunIterate(ctx)
		switch {
		case errors.Is(err, api.ErrClientShutDown):
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil && !errors.Is(err, api.ErrIterateReentered):
			c.log.WithError(err).Debug("iteration failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// demux matches one received frame to its pending record.
func (c *Client) demux(frame []byte, batch *concurrency.Batch[completion]) {
	id, resp, err := c.codec.DecodeResponse(frame)
	if err != nil {
		if id != 0 {
			if rec, ok := c.table.Remove(id, api.RequestCompleted); ok {
				batch.Push(completion{rec: rec, out: api.Undecodable(err)})
				return
			}
		}
		c.log.WithError(err).WithField("request_id", id).Warn("discarding undecodable response")
		c.metrics.ObserveDiscard()
		return
	}

	rec, ok := c.table.Remove(id, api.RequestCompleted)
	if !ok {
		c.log.WithFields(logrus.Fields{
			"request_id": id,
			"type":       resp.TypeName(),
		}).Debug("discarding response for unknown request id")
		c.metrics.ObserveDiscard()
		return
	}
	batch.Push(completion{rec: rec, out: classify(rec.Shape, resp)})
}

// classify maps a decoded response onto an outcome. A ServiceFault is a
// server failure whatever shape was expected.
func classify(shape api.ResponseShape, resp protocol.Response) api.Outcome {
	if _, fault := resp.(*protocol.ServiceFault); fault {
		return api.ServerFailure(resp)
	}
	if !shape.Matches(resp) {
		return api.ShapeMismatch(shape.Name(), resp)
	}
	if resp.ResponseHeader().ServiceResult.IsBad() {
		return api.ServerFailure(resp)
	}
	return api.Success(resp)
}

func (c *Client) sweepTimeouts(now time.Time, batch *concurrency.Batch[completion]) {
	for _, rec := range c.table.RemoveExpired(now) {
		c.log.WithFields(logrus.Fields{
			"request_id": rec.ID,
			"service":    rec.Service,
			"deadline":   rec.Deadline,
		}).Warn("request timed out")
		batch.Push(completion{rec: rec, out: api.TimedOut()})
	}
}

// fire runs the collected callbacks. No lock is held here.
func (c *Client) fire(batch *concurrency.Batch[completion]) {
	now := c.clock.Now()
	batch.Run(func(cp completion) {
		c.metrics.ObserveCompletion(cp.out.Kind.String(), now.Sub(cp.rec.Dispatched))
		c.log.WithFields(logrus.Fields{
			"request_id": cp.rec.ID,
			"service":    cp.rec.Service,
			"outcome":    cp.out.Kind,
			"status":     cp.out.Status,
		}).Debug("request completed")
		c.invoke(cp)
	})
}

// invoke isolates callback panics so the rest of the batch still completes.
func (c *Client) invoke(cp completion) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithFields(logrus.Fields{
				"request_id": cp.rec.ID,
				"panic":      r,
			}).Error("request callback panicked")
		}
	}()
	cp.rec.Fire(cp.out)
}
