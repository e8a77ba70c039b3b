// File: client/client.go
// Package client implements the asynchronous service layer of an OPC UA
// style client: request correlation, per-request timeouts, group
// cancellation, SecureChannel token renewal and shutdown drain.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Requests are dispatched from any goroutine. Responses, timeouts and
// renewal are processed by RunIterate, a cooperative step the owner calls
// periodically; callbacks fire only inside RunIterate or DrainAll.

package client

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/control"
	"github.com/momentics/hioload-ua/internal/correlation"
	"github.com/momentics/hioload-ua/internal/renewal"
	"github.com/momentics/hioload-ua/protocol"
)

var _ api.GracefulShutdown = (*Client)(nil)

// Client correlates requests sent over one transport.
type Client struct {
	cfg       Config
	log       *logrus.Entry
	clock     clock.PassiveClock
	codec     api.Codec
	transport api.Transport
	metrics   *control.Metrics
	debug     api.Debug

	table   *correlation.Table
	handles correlation.HandleSource
	renewal *renewal.Scheduler

	// lifecycle orders dispatch registration against DrainAll.
	lifecycle sync.RWMutex
	drained   bool
	closed    atomic.Bool
	iterating atomic.Bool

	stateMu sync.Mutex
	state   api.ChannelState
	status  protocol.StatusCode
}

// PendingRequest describes an outstanding request.
type PendingRequest struct {
	ID       uint32
	Handle   uint32
	Service  string
	Deadline time.Time
}

// New creates a client on an established transport. The connect and
// session handshake happen before New; cfg.SecurityToken carries its result.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Codec == nil || cfg.Transport == nil {
		return nil, fmt.Errorf("client needs a codec and a transport: %w", api.ErrInvalidArgument)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("negative timeout %v: %w", cfg.Timeout, api.ErrInvalidArgument)
	}
	full := cfg.withDefaults()

	c := &Client{
		cfg:       full,
		log:       full.Logger,
		clock:     full.Clock,
		codec:     full.Codec,
		transport: full.Transport,
		metrics:   full.Metrics,
		debug:     full.Debug,
		table:     correlation.NewTable(),
		state:     api.ChannelOpen,
		status:    protocol.StatusGood,
	}

	tok := renewal.FromSecurityToken(full.SecurityToken, c.clock.Now())
	if tok.Lifetime == 0 {
		tok.Lifetime = full.RequestedLifetime
	}
	c.renewal = renewal.NewScheduler(c.clock, tok)
	c.renewal.Observe(c.onRenewalTransition)
	c.registerProbes()

	c.log.WithFields(logrus.Fields{
		"transport": c.transport.Features().Name,
		"timeout":   full.Timeout,
		"lifetime":  tok.Lifetime,
	}).Info("client ready")
	return c, nil
}

func (c *Client) registerProbes() {
	c.debug.RegisterProbe("pending", func() any { return c.table.Len() })
	c.debug.RegisterProbe("renewal.state", func() any { return c.renewal.State().String() })
	c.debug.RegisterProbe("renewal.count", func() any { return c.renewal.Renewals() })
	c.debug.RegisterProbe("renewal.inflight", func() any { return c.renewal.InFlightID() })
	c.debug.RegisterProbe("renewal.error", func() any {
		if err := c.renewal.Err(); err != nil {
			return err.Error()
		}
		return ""
	})
	c.debug.RegisterProbe("connect.status", func() any { return c.ConnectStatus().String() })
	c.debug.RegisterProbe("channel.state", func() any { return c.ChannelState().String() })
	c.debug.RegisterProbe("next.deadline", func() any {
		if d, ok := c.table.NextDeadline(); ok {
			return d.Format(time.RFC3339Nano)
		}
		return ""
	})
}

// Name returns the instance name used in logs.
func (c *Client) Name() string { return c.cfg.Name }

// Pending returns the number of outstanding requests.
func (c *Client) Pending() int { return c.table.Len() }

// PendingRequests lists outstanding requests ordered by id.
func (c *Client) PendingRequests() []PendingRequest {
	var out []PendingRequest
	for r := range c.table.All() {
		out = append(out, PendingRequest{ID: r.ID, Handle: r.Handle, Service: r.Service, Deadline: r.Deadline})
	}
	return out
}

// DumpState returns the registered debug probes.
func (c *Client) DumpState() map[string]any { return c.debug.DumpState() }

// ConnectStatus is Good while the connection is usable and carries the
// failure cause once it is not.
func (c *Client) ConnectStatus() protocol.StatusCode {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.status
}

// ChannelState returns the connection state.
func (c *Client) ChannelState() api.ChannelState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

// SecurityToken returns the active security token.
func (c *Client) SecurityToken() renewal.Token { return c.renewal.Token() }

// RenewalState returns the security token state.
func (c *Client) RenewalState() api.RenewalState { return c.renewal.State() }

// setState records a connection state change and notifies OnStateChange
// outside the lock. Closed and Failed are sticky.
func (c *Client) setState(state api.ChannelState, status protocol.StatusCode) {
	c.stateMu.Lock()
	if c.state == state && c.status == status {
		c.stateMu.Unlock()
		return
	}
	if c.state == api.ChannelClosed || (c.state == api.ChannelFailed && state != api.ChannelClosed) {
		c.stateMu.Unlock()
		return
	}
	c.state, c.status = state, status
	c.stateMu.Unlock()

	c.log.WithFields(logrus.Fields{"state": state, "status": status}).Info("connection state changed")
	if fn := c.cfg.OnStateChange; fn != nil {
		fn(c, state, status)
	}
}

// Shutdown implements api.GracefulShutdown.
func (c *Client) Shutdown() error { return c.Close() }
