// File: client/config.go
// Package client
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/control"
	"github.com/momentics/hioload-ua/protocol"
)

// Callback receives the single outcome of a dispatched request. It runs on
// the goroutine calling RunIterate or DrainAll.
type Callback func(c *Client, requestID uint32, out api.Outcome)

// StateChangeFunc observes connection state changes.
type StateChangeFunc func(c *Client, state api.ChannelState, status protocol.StatusCode)

// Config holds client parameters.
type Config struct {
	Name    string        // instance name used in logs, random when empty
	Timeout time.Duration // default per-request timeout; 0 expires at the next step

	Codec     api.Codec
	Transport api.Transport

	// SecurityToken is the token issued by the connect handshake.
	// RequestedLifetime is asked for on renewal and stands in for the
	// token lifetime when the handshake reported none.
	SecurityToken     protocol.ChannelSecurityToken
	RequestedLifetime time.Duration
	AutoRenew         bool // renew from RunIterate once due

	Clock         clock.PassiveClock
	Logger        *logrus.Entry
	Metrics       *control.Metrics
	Debug         api.Debug
	OnStateChange StateChangeFunc
}

// DefaultConfig returns sensible defaults. Codec and Transport must be set
// by the caller.
func DefaultConfig() *Config {
	return &Config{
		Timeout:           5 * time.Second,
		RequestedLifetime: 10 * time.Minute,
		AutoRenew:         true,
	}
}

// ConfigFromFile builds a client configuration from the file format.
func ConfigFromFile(fc *control.Config) *Config {
	cfg := DefaultConfig()
	cfg.Timeout = fc.Timeout
	cfg.RequestedLifetime = fc.SecureChannel.Lifetime

	logger := logrus.New()
	logger.SetLevel(fc.Level())
	cfg.Logger = logrus.NewEntry(logger)
	return cfg
}

func (cfg *Config) withDefaults() Config {
	out := *cfg
	if out.Name == "" {
		out.Name = shortuuid.New()
	}
	if out.Clock == nil {
		out.Clock = clock.RealClock{}
	}
	if out.Logger == nil {
		out.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	out.Logger = out.Logger.WithFields(logrus.Fields{
		"component": "uaclient",
		"client":    out.Name,
	})
	if out.Metrics == nil {
		out.Metrics = control.NewMetrics("hioload_ua", nil)
	}
	if out.Debug == nil {
		out.Debug = control.NewDebugProbes()
	}
	return out
}

// DispatchOption adjusts a single Dispatch call.
type DispatchOption func(*dispatchOptions)

type dispatchOptions struct {
	timeout time.Duration
	handle  uint32
}

// WithTimeout overrides the configured timeout for one request and
// advertises it to the server through the request header.
func WithTimeout(d time.Duration) DispatchOption {
	return func(o *dispatchOptions) { o.timeout = d }
}

// WithRequestHandle puts the request into group h for CancelByHandle.
// Handles above protocol.AutoHandleThreshold are reserved for automatic use.
func WithRequestHandle(h uint32) DispatchOption {
	return func(o *dispatchOptions) { o.handle = h }
}
